package bloodrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
	notFoundMessage         = "Blood request not found"
	alreadyProcessedMessage = "Request already processed"
	adminForbiddenMessage   = "admins cannot submit blood requests"
)

// Service drives the blood request lifecycle.
type Service interface {
	Create(ctx context.Context, requesterID uuid.UUID, role enums.AccountRole, req CreateRequest) (*RequestDTO, error)
	ListMine(ctx context.Context, requesterID uuid.UUID) ([]RequestDTO, error)
	ListAll(ctx context.Context) ([]RequestDTO, error)
	Approve(ctx context.Context, actorID, requestID uuid.UUID) (*ApprovalResult, error)
	Reject(ctx context.Context, actorID, requestID uuid.UUID) (*RequestDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the blood request service.
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

// NewService builds the blood request service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("blood requests db required")
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

func (s *service) Create(ctx context.Context, requesterID uuid.UUID, role enums.AccountRole, req CreateRequest) (*RequestDTO, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	if role == enums.AccountRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, adminForbiddenMessage)
	}
	request, err := buildRequest(requesterID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create blood request")
	}
	return FromModel(request), nil
}

// buildRequest converts a tag-validated body into a pending request.
func buildRequest(requesterID uuid.UUID, req CreateRequest) (*models.BloodRequest, error) {
	req.Normalize()
	group, err := enums.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blood group").
			WithDetails(map[string]string{"bloodGroup": "must be one of " + strings.Join(bloodGroupNames(), ", ")})
	}
	urgency, err := enums.ParseUrgency(req.Urgency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency")
	}
	units := req.UnitsRequested
	if units == nil || *units < minUnits || *units > maxUnits {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unitsRequested must be between %d and %d", minUnits, maxUnits))
	}

	return &models.BloodRequest{
		RequesterID:    requesterID,
		BloodGroup:     group,
		UnitsRequested: *units,
		Urgency:        urgency,
		Reason:         req.Reason,
		HospitalName:   req.HospitalName,
		ContactNumber:  req.ContactNumber,
		Status:         enums.ApprovalStatusPending,
	}, nil
}

func (s *service) ListMine(ctx context.Context, requesterID uuid.UUID) ([]RequestDTO, error) {
	rows, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list blood requests")
	}
	return FromModels(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]RequestDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list blood requests")
	}
	return FromModels(rows), nil
}

// Approve claims a pending request and debits its units from the ledger in one transaction.
// A failed debit rolls the claim back, so the request stays pending and stock is untouched.
func (s *service) Approve(ctx context.Context, actorID, requestID uuid.UUID) (result *ApprovalResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveDecision(metrics.WorkflowBloodRequest, outcomeFor(err, metrics.OutcomeApproved), time.Since(started))
	}()

	var (
		request *models.BloodRequest
		rec     *models.InventoryRecord
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		claimed, claimErr := repo.Claim(ctx, requestID, actorID, s.now())
		if claimErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, claimErr, "approve blood request")
		}

		var findErr error
		request, findErr = repo.FindByID(ctx, requestID)
		if findErr != nil {
			return lookupError(findErr)
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, alreadyProcessedMessage)
		}

		var debitErr error
		rec, debitErr = s.ledger.WithTx(tx).Debit(ctx, inventory.Movement{
			BloodGroup: request.BloodGroup,
			Units:      request.UnitsRequested,
			Kind:       enums.AdjustmentKindRequestApproved,
			SourceID:   &request.ID,
			ActorID:    &actorID,
		})
		return debitErr
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			s.logInsufficient(ctx, requestID, err)
		}
		return nil, asStorage(err, "approve blood request")
	}

	s.metrics.ObserveAdjustment(rec.BloodGroup.String(), -request.UnitsRequested)
	s.logDecision(ctx, "blood_request.approved", request, actorID)
	return &ApprovalResult{
		Request:   *FromModel(request),
		Inventory: *inventory.RecordFromModel(rec),
	}, nil
}

// Reject overwrites the request status with rejected. Already processed requests are not guarded.
func (s *service) Reject(ctx context.Context, actorID, requestID uuid.UUID) (result *RequestDTO, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveDecision(metrics.WorkflowBloodRequest, outcomeFor(err, metrics.OutcomeRejected), time.Since(started))
	}()

	moved, err := s.repo.MarkRejected(ctx, requestID, actorID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "reject blood request")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err)
	}

	s.logDecision(ctx, "blood_request.rejected", request, actorID)
	return FromModel(request), nil
}

func (s *service) logDecision(ctx context.Context, event string, request *models.BloodRequest, actorID uuid.UUID) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"blood_request_id": request.ID.String(),
		"blood_group":      request.BloodGroup,
		"units":            request.UnitsRequested,
		"actor_id":         actorID.String(),
	})
	s.logg.Info(ctx, event)
}

func (s *service) logInsufficient(ctx context.Context, requestID uuid.UUID, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"blood_request_id": requestID.String(),
		"details":          pkgerrors.As(err).Details(),
	})
	s.logg.Warn(ctx, "blood_request.insufficient_stock")
}

func bloodGroupNames() []string {
	groups := enums.BloodGroups()
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.String())
	}
	return out
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load blood request")
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
