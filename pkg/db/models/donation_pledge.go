package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// DonationPledge is a user's scheduled intent to donate, pending admin review.
type DonationPledge struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	DonorID         uuid.UUID            `gorm:"column:donor_id;type:uuid;not null;index"`
	Donor           *User                `gorm:"foreignKey:DonorID"`
	BloodGroup      enums.BloodGroup     `gorm:"column:blood_group;type:blood_group;not null"`
	AppointmentDate time.Time            `gorm:"column:appointment_date;not null"`
	Status          enums.ApprovalStatus `gorm:"column:status;type:approval_status;not null;default:pending"`
	ReviewedBy      *uuid.UUID           `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time           `gorm:"column:reviewed_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *DonationPledge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
