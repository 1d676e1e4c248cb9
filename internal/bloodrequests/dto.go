package bloodrequests

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/internal/inventory"
	"github.com/redreserve/redreserve-backend/internal/users"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

const (
	minUnits = 1
	maxUnits = 10
)

// CreateRequest is the request submission body. Units is accepted as an alias of UnitsRequested.
type CreateRequest struct {
	BloodGroup     string `json:"bloodGroup" validate:"required,bloodgroup"`
	UnitsRequested *int   `json:"unitsRequested" validate:"required,min=1,max=10"`
	Units          *int   `json:"units" validate:"-"`
	Urgency        string `json:"urgency" validate:"omitempty,oneof=normal urgent critical"`
	Reason         string `json:"reason" validate:"required,max=500"`
	HospitalName   string `json:"hospitalName" validate:"required,max=120"`
	ContactNumber  string `json:"contactNumber" validate:"required,max=32"`
}

// Normalize trims free text, lower-cases urgency and folds the units alias into UnitsRequested.
func (r *CreateRequest) Normalize() {
	r.BloodGroup = strings.TrimSpace(r.BloodGroup)
	r.Urgency = strings.ToLower(strings.TrimSpace(r.Urgency))
	r.Reason = strings.TrimSpace(r.Reason)
	r.HospitalName = strings.TrimSpace(r.HospitalName)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	if r.UnitsRequested == nil {
		r.UnitsRequested = r.Units
	}
	r.Units = nil
}

// RequestDTO is the public blood request payload.
type RequestDTO struct {
	ID             uuid.UUID            `json:"id"`
	RequesterID    uuid.UUID            `json:"requesterId"`
	Requester      *users.Summary       `json:"requester,omitempty"`
	BloodGroup     enums.BloodGroup     `json:"bloodGroup"`
	UnitsRequested int                  `json:"unitsRequested"`
	Urgency        enums.Urgency        `json:"urgency"`
	Reason         string               `json:"reason"`
	HospitalName   string               `json:"hospitalName"`
	ContactNumber  string               `json:"contactNumber"`
	Status         enums.ApprovalStatus `json:"status"`
	ReviewedBy     *uuid.UUID           `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time           `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// ApprovalResult pairs the approved request with the ledger record it drew from.
type ApprovalResult struct {
	Request   RequestDTO          `json:"request"`
	Inventory inventory.RecordDTO `json:"inventory"`
}

func FromModel(m *models.BloodRequest) *RequestDTO {
	if m == nil {
		return nil
	}
	return &RequestDTO{
		ID:             m.ID,
		RequesterID:    m.RequesterID,
		Requester:      users.SummaryFromModel(m.Requester),
		BloodGroup:     m.BloodGroup,
		UnitsRequested: m.UnitsRequested,
		Urgency:        m.Urgency,
		Reason:         m.Reason,
		HospitalName:   m.HospitalName,
		ContactNumber:  m.ContactNumber,
		Status:         m.Status,
		ReviewedBy:     m.ReviewedBy,
		ReviewedAt:     m.ReviewedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromModels(rows []models.BloodRequest) []RequestDTO {
	out := make([]RequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
