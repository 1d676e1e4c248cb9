package assistant

// AskRequest is the assistant question body.
type AskRequest struct {
	Question string `json:"question" validate:"max=2000"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

// AutofillRequest carries free text to extract form fields from.
type AutofillRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// BloodRequestDraft mirrors the blood request form fields the model fills in.
type BloodRequestDraft struct {
	BloodGroupRequired string  `json:"bloodGroupRequired"`
	UnitsRequested     *int    `json:"unitsRequested"`
	UrgencyLevel       string  `json:"urgencyLevel"`
	HospitalName       *string `json:"hospitalName"`
	ContactNumber      *string `json:"contactNumber"`
	ReasonForRequest   *string `json:"reasonForRequest"`
}

// DonationDraft mirrors the donation appointment form fields.
type DonationDraft struct {
	BloodGroup     string  `json:"bloodGroup"`
	PreferredDate  *string `json:"preferredDate"`
	MedicalHistory *string `json:"medicalHistory"`
}
