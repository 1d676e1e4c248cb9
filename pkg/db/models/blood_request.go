package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// BloodRequest is a user's ask for blood units, pending admin review and stock.
type BloodRequest struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	RequesterID    uuid.UUID            `gorm:"column:requester_id;type:uuid;not null;index"`
	Requester      *User                `gorm:"foreignKey:RequesterID"`
	BloodGroup     enums.BloodGroup     `gorm:"column:blood_group;type:blood_group;not null"`
	UnitsRequested int                  `gorm:"column:units_requested;not null;check:units_requested BETWEEN 1 AND 10"`
	Urgency        enums.Urgency        `gorm:"column:urgency;type:urgency_level;not null;default:normal"`
	Reason         string               `gorm:"column:reason;not null"`
	HospitalName   string               `gorm:"column:hospital_name;not null"`
	ContactNumber  string               `gorm:"column:contact_number;not null"`
	Status         enums.ApprovalStatus `gorm:"column:status;type:approval_status;not null;default:pending"`
	ReviewedBy     *uuid.UUID           `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt     *time.Time           `gorm:"column:reviewed_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BloodRequest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
