package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// InventoryAdjustment is an append-only journal row written with every ledger mutation.
type InventoryAdjustment struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BloodGroup enums.BloodGroup     `gorm:"column:blood_group;type:blood_group;not null;index"`
	Kind       enums.AdjustmentKind `gorm:"column:kind;type:inventory_adjustment_kind;not null"`
	Delta      int                  `gorm:"column:delta;not null"`
	UnitsAfter int                  `gorm:"column:units_after;not null"`
	SourceID   *uuid.UUID           `gorm:"column:source_id;type:uuid"`
	ActorID    *uuid.UUID           `gorm:"column:actor_id;type:uuid"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (a *InventoryAdjustment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
