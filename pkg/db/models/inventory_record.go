package models

import (
	"time"

	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// InventoryRecord is the per-blood-group counter of available units.
type InventoryRecord struct {
	BloodGroup     enums.BloodGroup `gorm:"column:blood_group;type:blood_group;primaryKey"`
	UnitsAvailable int              `gorm:"column:units_available;not null;default:0;check:units_available >= 0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
