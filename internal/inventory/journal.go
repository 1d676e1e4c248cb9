package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 200
)

// JournalRepository appends and reads inventory adjustment rows.
type JournalRepository struct {
	db *gorm.DB
}

// NewJournalRepository returns a journal repository bound to the provided database.
func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) WithTx(tx *gorm.DB) *JournalRepository {
	if tx == nil {
		return r
	}
	return &JournalRepository{db: tx}
}

func (r *JournalRepository) Append(ctx context.Context, row *models.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// JournalFilter narrows journal listings.
type JournalFilter struct {
	BloodGroup *enums.BloodGroup
	Limit      int
}

func (f JournalFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultJournalLimit
	case f.Limit > maxJournalLimit:
		return maxJournalLimit
	default:
		return f.Limit
	}
}

// List returns journal rows newest first.
func (r *JournalRepository) List(ctx context.Context, filter JournalFilter) ([]models.InventoryAdjustment, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(filter.limit())
	if filter.BloodGroup != nil {
		q = q.Where("blood_group = ?", *filter.BloodGroup)
	}
	var rows []models.InventoryAdjustment
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
