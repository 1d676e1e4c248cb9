package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// RecordDTO is the public inventory record payload.
type RecordDTO struct {
	BloodGroup     enums.BloodGroup `json:"bloodGroup"`
	UnitsAvailable int              `json:"unitsAvailable"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// AdjustmentDTO is the public journal row payload.
type AdjustmentDTO struct {
	ID         uuid.UUID            `json:"id"`
	BloodGroup enums.BloodGroup     `json:"bloodGroup"`
	Kind       enums.AdjustmentKind `json:"kind"`
	Delta      int                  `json:"delta"`
	UnitsAfter int                  `json:"unitsAfter"`
	SourceID   *uuid.UUID           `json:"sourceId,omitempty"`
	ActorID    *uuid.UUID           `json:"actorId,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// SetRequest is the admin override body. Units is accepted as an alias of UnitsAvailable.
type SetRequest struct {
	BloodGroup     string `json:"bloodGroup" validate:"required,bloodgroup"`
	UnitsAvailable *int   `json:"unitsAvailable" validate:"required,min=0"`
	Units          *int   `json:"units" validate:"-"`
}

// Normalize trims the blood group and folds units into unitsAvailable when the latter is absent.
func (r *SetRequest) Normalize() {
	r.BloodGroup = strings.TrimSpace(r.BloodGroup)
	if r.UnitsAvailable == nil {
		r.UnitsAvailable = r.Units
	}
	r.Units = nil
}

func RecordFromModel(m *models.InventoryRecord) *RecordDTO {
	if m == nil {
		return nil
	}
	return &RecordDTO{
		BloodGroup:     m.BloodGroup,
		UnitsAvailable: m.UnitsAvailable,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func RecordsFromModels(rows []models.InventoryRecord) []RecordDTO {
	out := make([]RecordDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *RecordFromModel(&rows[i]))
	}
	return out
}

func AdjustmentsFromModels(rows []models.InventoryAdjustment) []AdjustmentDTO {
	out := make([]AdjustmentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, AdjustmentDTO{
			ID:         row.ID,
			BloodGroup: row.BloodGroup,
			Kind:       row.Kind,
			Delta:      row.Delta,
			UnitsAfter: row.UnitsAfter,
			SourceID:   row.SourceID,
			ActorID:    row.ActorID,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out
}
