package inventory

import (
	"context"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

// Repository owns the per-group unit counters. Every write is a single atomic statement.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository constructs an inventory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx, now: r.now}
}

// List returns every record ordered by blood group ascending.
func (r *Repository) List(ctx context.Context) ([]models.InventoryRecord, error) {
	var rows []models.InventoryRecord
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	// Postgres orders enums by declaration; sort here so every driver agrees.
	slices.SortFunc(rows, func(a, b models.InventoryRecord) int {
		return strings.Compare(string(a.BloodGroup), string(b.BloodGroup))
	})
	return rows, nil
}

// FindByGroup loads one record. Missing groups surface gorm.ErrRecordNotFound.
func (r *Repository) FindByGroup(ctx context.Context, group enums.BloodGroup) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	if err := r.db.WithContext(ctx).First(&rec, "blood_group = ?", group).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetAbsolute upserts the record and overwrites its count.
func (r *Repository) SetAbsolute(ctx context.Context, group enums.BloodGroup, units int) (*models.InventoryRecord, error) {
	now := r.now()
	rec := models.InventoryRecord{BloodGroup: group, UnitsAvailable: units, CreatedAt: now, UpdatedAt: now}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blood_group"}},
			DoUpdates: clause.AssignmentColumns([]string{"units_available", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return nil, err
	}
	return r.FindByGroup(ctx, group)
}

// Increment upserts the record and adds delta to its count in one statement.
func (r *Repository) Increment(ctx context.Context, group enums.BloodGroup, delta int) (*models.InventoryRecord, error) {
	now := r.now()
	rec := models.InventoryRecord{BloodGroup: group, UnitsAvailable: delta, CreatedAt: now, UpdatedAt: now}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "blood_group"}},
			DoUpdates: clause.Assignments(map[string]any{
				"units_available": gorm.Expr("inventory_records.units_available + ?", delta),
				"updated_at":      now,
			}),
		}).
		Create(&rec).Error
	if err != nil {
		return nil, err
	}
	return r.FindByGroup(ctx, group)
}

// DecrementIfSufficient subtracts units only while the stored count covers them.
// ok is false when the record is missing or short; the count is then untouched.
func (r *Repository) DecrementIfSufficient(ctx context.Context, group enums.BloodGroup, units int) (rec *models.InventoryRecord, ok bool, err error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryRecord{}).
		Where("blood_group = ? AND units_available >= ?", group, units).
		Updates(map[string]any{
			"units_available": gorm.Expr("units_available - ?", units),
			"updated_at":      r.now(),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	rec, err = r.FindByGroup(ctx, group)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}
