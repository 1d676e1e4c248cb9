package bloodrequests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// Repository persists blood requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	var request models.BloodRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *Repository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]models.BloodRequest, error) {
	var rows []models.BloodRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListAll(ctx context.Context) ([]models.BloodRequest, error) {
	var rows []models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Claim moves a pending request to approved with a conditional write.
// Concurrent claims on one id serialize on the row; only one observes pending.
func (r *Repository) Claim(ctx context.Context, id, reviewerID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusPending).
		Updates(map[string]any{
			"status":      enums.ApprovalStatusApproved,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkRejected overwrites the status regardless of its current value.
func (r *Repository) MarkRejected(ctx context.Context, id, reviewerID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.ApprovalStatusRejected,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
