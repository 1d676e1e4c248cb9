package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// Repository persists donation pledges.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a pledge repository to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, pledge *models.DonationPledge) error {
	return r.db.WithContext(ctx).Create(pledge).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DonationPledge, error) {
	var pledge models.DonationPledge
	if err := r.db.WithContext(ctx).First(&pledge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pledge, nil
}

// ListByDonor returns the donor's pledges newest first.
func (r *Repository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.DonationPledge, error) {
	var rows []models.DonationPledge
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every pledge newest first with the donor preloaded.
func (r *Repository) ListAll(ctx context.Context) ([]models.DonationPledge, error) {
	var rows []models.DonationPledge
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// MarkApproved moves a pledge out of pending in one conditional write.
// It reports false when the pledge is missing or no longer pending.
func (r *Repository) MarkApproved(ctx context.Context, id, reviewerID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DonationPledge{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusPending).
		Updates(reviewUpdates(enums.ApprovalStatusApproved, reviewerID, at))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkRejected overwrites the status regardless of its current value.
func (r *Repository) MarkRejected(ctx context.Context, id, reviewerID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DonationPledge{}).
		Where("id = ?", id).
		Updates(reviewUpdates(enums.ApprovalStatusRejected, reviewerID, at))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func reviewUpdates(status enums.ApprovalStatus, reviewerID uuid.UUID, at time.Time) map[string]any {
	return map[string]any{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": at,
		"updated_at":  at,
	}
}
