package assistant

import (
	"context"

	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
)

// QueryRepository stores answered assistant questions.
type QueryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) Create(ctx context.Context, query *models.AIQuery) error {
	return r.db.WithContext(ctx).Create(query).Error
}
