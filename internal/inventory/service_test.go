package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/redreserve/redreserve-backend/pkg/db"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/metrics"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(ServiceParams{DB: conn, Tx: db.NewFromConn(conn), Metrics: metrics.NewWorkflowMetrics(nil)})
	require.NoError(t, err)
	return svc
}

func intPtr(v int) *int { return &v }

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	_, err = NewService(ServiceParams{DB: openTestDB(t)})
	require.Error(t, err)
}

func TestServiceSetAcceptsUnitsAlias(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Set(ctx, uuid.New(), SetRequest{BloodGroup: "o+", Units: intPtr(9)})
	require.NoError(t, err)
	require.Equal(t, enums.BloodGroupOPos, rec.BloodGroup)
	require.Equal(t, 9, rec.UnitsAvailable)

	rec, err = svc.Set(ctx, uuid.New(), SetRequest{BloodGroup: "O+", UnitsAvailable: intPtr(2), Units: intPtr(40)})
	require.NoError(t, err)
	require.Equal(t, 2, rec.UnitsAvailable)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 2, list[0].UnitsAvailable)
}

func TestServiceSetValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := map[string]SetRequest{
		"missing group": {UnitsAvailable: intPtr(1)},
		"bad group":     {BloodGroup: "C+", UnitsAvailable: intPtr(1)},
		"missing units": {BloodGroup: "A+"},
		"negative":      {BloodGroup: "A+", UnitsAvailable: intPtr(-3)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Set(ctx, uuid.New(), req)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestServiceListAdjustmentsFiltersByGroup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.Set(ctx, actor, SetRequest{BloodGroup: "A+", UnitsAvailable: intPtr(3)})
	require.NoError(t, err)
	_, err = svc.Set(ctx, actor, SetRequest{BloodGroup: "B-", UnitsAvailable: intPtr(1)})
	require.NoError(t, err)

	all, err := svc.ListAdjustments(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyA, err := svc.ListAdjustments(ctx, "a+", 10)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	require.Equal(t, enums.BloodGroupAPos, onlyA[0].BloodGroup)
	require.Equal(t, enums.AdjustmentKindManualSet, onlyA[0].Kind)
	require.Equal(t, 3, onlyA[0].Delta)
	require.NotNil(t, onlyA[0].ActorID)
	require.Equal(t, actor, *onlyA[0].ActorID)

	_, err = svc.ListAdjustments(ctx, "nope", 10)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
