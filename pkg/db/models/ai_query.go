package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// AIQuery records every question answered by the blood assistant.
type AIQuery struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID            `gorm:"column:user_id;type:uuid;index"`
	Question  string                `gorm:"column:question;not null"`
	Answer    string                `gorm:"column:answer;not null"`
	Category  enums.AIQueryCategory `gorm:"column:category;type:ai_query_category;not null;default:OTHER"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (q *AIQuery) BeforeCreate(tx *gorm.DB) error {
	ensureID(&q.ID)
	return nil
}
