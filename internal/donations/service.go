package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/internal/inventory"
	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/logger"
	"github.com/redreserve/redreserve-backend/pkg/metrics"
)

const (
	notFoundMessage         = "Donation not found"
	alreadyProcessedMessage = "Donation already processed"
	missingFieldsMessage    = "Appointment date and blood group are required"
)

// Service drives the donation pledge lifecycle.
type Service interface {
	Create(ctx context.Context, donorID uuid.UUID, req CreateRequest) (*DonationDTO, error)
	ListMine(ctx context.Context, donorID uuid.UUID) ([]DonationDTO, error)
	ListAll(ctx context.Context) ([]DonationDTO, error)
	Approve(ctx context.Context, actorID, donationID uuid.UUID) (*ApprovalResult, error)
	Reject(ctx context.Context, actorID, donationID uuid.UUID) (*DonationDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the donation service.
type ServiceParams struct {
	DB      *gorm.DB
	Tx      txRunner
	Metrics *metrics.WorkflowMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	ledger  *inventory.Ledger
	tx      txRunner
	metrics *metrics.WorkflowMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the donation service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("donations db required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    NewRepository(params.DB),
		ledger:  inventory.NewLedger(params.DB),
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, donorID uuid.UUID, req CreateRequest) (*DonationDTO, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	req.Normalize()
	if req.BloodGroup == "" || req.AppointmentDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, missingFieldsMessage)
	}
	group, err := enums.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blood group")
	}

	pledge := &models.DonationPledge{
		DonorID:         donorID,
		BloodGroup:      group,
		AppointmentDate: req.AppointmentDate.UTC(),
		Status:          enums.ApprovalStatusPending,
	}
	if err := s.repo.Create(ctx, pledge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create donation pledge")
	}
	return FromModel(pledge), nil
}

func (s *service) ListMine(ctx context.Context, donorID uuid.UUID) ([]DonationDTO, error) {
	rows, err := s.repo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list donation pledges")
	}
	return FromModels(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]DonationDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list donation pledges")
	}
	return FromModels(rows), nil
}

// Approve marks a pending pledge approved and credits one unit to its group.
// Both writes and the journal row commit in a single transaction.
func (s *service) Approve(ctx context.Context, actorID, donationID uuid.UUID) (result *ApprovalResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveDecision(metrics.WorkflowDonation, outcomeFor(err, metrics.OutcomeApproved), time.Since(started))
	}()

	var (
		pledge *models.DonationPledge
		rec    *models.InventoryRecord
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, markErr := repo.MarkApproved(ctx, donationID, actorID, s.now())
		if markErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, markErr, "approve donation pledge")
		}

		var findErr error
		pledge, findErr = repo.FindByID(ctx, donationID)
		if findErr != nil {
			return lookupError(findErr)
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, alreadyProcessedMessage)
		}

		var creditErr error
		rec, creditErr = s.ledger.WithTx(tx).Credit(ctx, inventory.Movement{
			BloodGroup: pledge.BloodGroup,
			Units:      1,
			Kind:       enums.AdjustmentKindDonationApproved,
			SourceID:   &pledge.ID,
			ActorID:    &actorID,
		})
		return creditErr
	})
	if err != nil {
		return nil, asStorage(err, "approve donation pledge")
	}

	s.metrics.ObserveAdjustment(rec.BloodGroup.String(), 1)
	s.logDecision(ctx, "donation.approved", pledge, actorID)
	return &ApprovalResult{
		Donation:  *FromModel(pledge),
		Inventory: *inventory.RecordFromModel(rec),
	}, nil
}

// Reject overwrites the pledge status with rejected. Already processed pledges are not guarded.
func (s *service) Reject(ctx context.Context, actorID, donationID uuid.UUID) (result *DonationDTO, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveDecision(metrics.WorkflowDonation, outcomeFor(err, metrics.OutcomeRejected), time.Since(started))
	}()

	moved, err := s.repo.MarkRejected(ctx, donationID, actorID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reject donation pledge")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	pledge, err := s.repo.FindByID(ctx, donationID)
	if err != nil {
		return nil, lookupError(err)
	}

	s.logDecision(ctx, "donation.rejected", pledge, actorID)
	return FromModel(pledge), nil
}

func (s *service) logDecision(ctx context.Context, event string, pledge *models.DonationPledge, actorID uuid.UUID) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"donation_id": pledge.ID.String(),
		"blood_group": pledge.BloodGroup,
		"actor_id":    actorID.String(),
	})
	s.logg.Info(ctx, event)
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load donation pledge")
}

func asStorage(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, msg)
}

func outcomeFor(err error, success string) string {
	if err == nil {
		return success
	}
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case pkgerrors.CodeAlreadyProcessed:
		return metrics.OutcomeAlreadyProcessed
	case pkgerrors.CodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeError
	}
}
