package donations

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/internal/inventory"
	"github.com/redreserve/redreserve-backend/internal/users"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	"github.com/redreserve/redreserve-backend/pkg/types"
)

// CreateRequest is the pledge booking body.
type CreateRequest struct {
	BloodGroup      string             `json:"bloodGroup" validate:"required,bloodgroup"`
	AppointmentDate types.FlexibleTime `json:"appointmentDate" validate:"required"`
}

// Normalize trims the blood group.
func (r *CreateRequest) Normalize() {
	r.BloodGroup = strings.TrimSpace(r.BloodGroup)
}

// DonationDTO is the public pledge payload.
type DonationDTO struct {
	ID              uuid.UUID            `json:"id"`
	DonorID         uuid.UUID            `json:"donorId"`
	Donor           *users.Summary       `json:"donor,omitempty"`
	BloodGroup      enums.BloodGroup     `json:"bloodGroup"`
	AppointmentDate time.Time            `json:"appointmentDate"`
	Status          enums.ApprovalStatus `json:"status"`
	ReviewedBy      *uuid.UUID           `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time           `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// ApprovalResult pairs the approved pledge with the ledger record it credited.
type ApprovalResult struct {
	Donation  DonationDTO         `json:"donation"`
	Inventory inventory.RecordDTO `json:"inventory"`
}

func FromModel(m *models.DonationPledge) *DonationDTO {
	if m == nil {
		return nil
	}
	return &DonationDTO{
		ID:              m.ID,
		DonorID:         m.DonorID,
		Donor:           users.SummaryFromModel(m.Donor),
		BloodGroup:      m.BloodGroup,
		AppointmentDate: m.AppointmentDate,
		Status:          m.Status,
		ReviewedBy:      m.ReviewedBy,
		ReviewedAt:      m.ReviewedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func FromModels(rows []models.DonationPledge) []DonationDTO {
	out := make([]DonationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
