package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
	"github.com/redreserve/redreserve-backend/pkg/metrics"
)

// Service exposes the admin view of the ledger.
type Service interface {
	List(ctx context.Context) ([]RecordDTO, error)
	Set(ctx context.Context, actorID uuid.UUID, req SetRequest) (*RecordDTO, error)
	ListAdjustments(ctx context.Context, bloodGroup string, limit int) ([]AdjustmentDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the inventory service.
type ServiceParams struct {
	DB      *gorm.DB
	Tx      txRunner
	Metrics *metrics.WorkflowMetrics
	Logger  *logger.Logger
}

type service struct {
	records *Repository
	journal *JournalRepository
	ledger  *Ledger
	tx      txRunner
	metrics *metrics.WorkflowMetrics
	logg    *logger.Logger
}

// NewService builds the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("inventory db required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		records: NewRepository(params.DB),
		journal: NewJournalRepository(params.DB),
		ledger:  NewLedger(params.DB),
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context) ([]RecordDTO, error) {
	rows, err := s.records.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list inventory")
	}
	return RecordsFromModels(rows), nil
}

func (s *service) Set(ctx context.Context, actorID uuid.UUID, req SetRequest) (*RecordDTO, error) {
	req.Normalize()
	if req.BloodGroup == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bloodGroup is required")
	}
	group, err := enums.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blood group")
	}
	units := req.UnitsAvailable
	if units == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unitsAvailable is required")
	}

	var actor *uuid.UUID
	if actorID != uuid.Nil {
		actor = &actorID
	}

	var (
		rec   *models.InventoryRecord
		delta int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var setErr error
		rec, delta, setErr = s.ledger.WithTx(tx).Set(ctx, group, *units, actor)
		return setErr
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAdjustment(group.String(), delta)
	if s.logg != nil {
		fields := map[string]any{
			"blood_group":     group,
			"units_available": rec.UnitsAvailable,
			"actor_id":        actorID.String(),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "inventory.set")
	}
	return RecordFromModel(rec), nil
}

func (s *service) ListAdjustments(ctx context.Context, bloodGroup string, limit int) ([]AdjustmentDTO, error) {
	filter := JournalFilter{Limit: limit}
	if strings.TrimSpace(bloodGroup) != "" {
		group, err := enums.ParseBloodGroup(bloodGroup)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blood group")
		}
		filter.BloodGroup = &group
	}
	rows, err := s.journal.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list inventory adjustments")
	}
	return AdjustmentsFromModels(rows), nil
}
