package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

const insufficientStockMessage = "Insufficient stock"

// Movement describes a workflow-driven change to one blood group.
type Movement struct {
	BloodGroup enums.BloodGroup
	Units      int
	Kind       enums.AdjustmentKind
	SourceID   *uuid.UUID
	ActorID    *uuid.UUID
}

// Ledger applies counter mutations and journals each one on the same handle.
// Bind it to a transaction with WithTx so the counter and journal commit together.
type Ledger struct {
	records *Repository
	journal *JournalRepository
}

// NewLedger builds a ledger over the provided database handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{records: NewRepository(db), journal: NewJournalRepository(db)}
}

func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	if tx == nil {
		return l
	}
	return &Ledger{records: l.records.WithTx(tx), journal: l.journal.WithTx(tx)}
}

// Credit adds units, creating the record when absent.
func (l *Ledger) Credit(ctx context.Context, m Movement) (*models.InventoryRecord, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}
	rec, err := l.records.Increment(ctx, m.BloodGroup, m.Units)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "increment inventory")
	}
	if err := l.record(ctx, m, m.Units, rec.UnitsAvailable); err != nil {
		return nil, err
	}
	return rec, nil
}

// Debit removes units only if the group holds at least that many at write time.
// A missing group counts as zero stock.
func (l *Ledger) Debit(ctx context.Context, m Movement) (*models.InventoryRecord, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}
	rec, ok, err := l.records.DecrementIfSufficient(ctx, m.BloodGroup, m.Units)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "decrement inventory")
	}
	if !ok {
		return nil, l.insufficient(ctx, m)
	}
	if err := l.record(ctx, m, -m.Units, rec.UnitsAvailable); err != nil {
		return nil, err
	}
	return rec, nil
}

// Set overwrites the count for a group and journals the signed difference, which it also returns.
func (l *Ledger) Set(ctx context.Context, group enums.BloodGroup, units int, actorID *uuid.UUID) (*models.InventoryRecord, int, error) {
	if !group.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid blood group")
	}
	if units < 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "units must be zero or more")
	}
	previous := 0
	current, err := l.records.FindByGroup(ctx, group)
	switch {
	case err == nil:
		previous = current.UnitsAvailable
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load inventory")
	}

	rec, err := l.records.SetAbsolute(ctx, group, units)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "set inventory")
	}
	delta := rec.UnitsAvailable - previous
	m := Movement{BloodGroup: group, Kind: enums.AdjustmentKindManualSet, ActorID: actorID}
	if err := l.record(ctx, m, delta, rec.UnitsAvailable); err != nil {
		return nil, 0, err
	}
	return rec, delta, nil
}

func (l *Ledger) record(ctx context.Context, m Movement, delta, after int) error {
	row := &models.InventoryAdjustment{
		BloodGroup: m.BloodGroup,
		Kind:       m.Kind,
		Delta:      delta,
		UnitsAfter: after,
		SourceID:   m.SourceID,
		ActorID:    m.ActorID,
	}
	if err := l.journal.Append(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "append inventory adjustment")
	}
	return nil
}

func (l *Ledger) insufficient(ctx context.Context, m Movement) error {
	available := 0
	if rec, err := l.records.FindByGroup(ctx, m.BloodGroup); err == nil {
		available = rec.UnitsAvailable
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load inventory")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, insufficientStockMessage).WithDetails(map[string]any{
		"bloodGroup": m.BloodGroup,
		"requested":  m.Units,
		"available":  available,
	})
}

func validateMovement(m Movement) error {
	if !m.BloodGroup.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid blood group")
	}
	if m.Units <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "units must be positive")
	}
	if !m.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid adjustment kind")
	}
	return nil
}
