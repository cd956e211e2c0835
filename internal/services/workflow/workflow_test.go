package workflow

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
	"github.com/fyclub/treasury-guardian/internal/history"
	"github.com/fyclub/treasury-guardian/internal/services/governance"
	"github.com/fyclub/treasury-guardian/internal/services/planner"
	"github.com/fyclub/treasury-guardian/internal/services/risk"
)

type stubWatcher struct {
	snapshot domain.TreasurySnapshot
	err      error
}

func (s *stubWatcher) Snapshot(context.Context, string) (domain.TreasurySnapshot, error) {
	return s.snapshot, s.err
}

func newPipeline(w snapshotter, store recorder) *Service {
	logger := zap.NewNop()
	return New(w, risk.New(nil, logger), planner.New(nil, logger), governance.New(nil, logger), store, logger)
}

func TestRunMediumRiskScenario(t *testing.T) {
	// 50k single-asset treasury: fallback risk MEDIUM/60, one DIVERSIFY
	// action, approved with the diversify kept by the safe-action filter
	snapshot := domain.NewTreasurySnapshot("0x1", []domain.Position{
		{Token: "ETH", Balance: 10, USDValue: 50_000},
	})

	result := newPipeline(&stubWatcher{snapshot: snapshot}, nil).Run(context.Background(), "0x1")

	require.NotEmpty(t, result.ID)
	require.Equal(t, "0x1", result.Address)
	require.NotNil(t, result.Snapshot)
	require.InDelta(t, 50_000, result.Snapshot.TotalUSDValue, 1e-9)

	require.Equal(t, domain.RiskMedium, result.Risk.Level)
	require.InDelta(t, 60, result.Risk.Score, 1e-9)

	require.Len(t, result.Plan.Actions, 1)
	require.Equal(t, domain.ActionDiversify, result.Plan.Actions[0].Type)

	require.True(t, result.Governance.Approved)
	require.Equal(t, result.Plan.Actions, result.Governance.EnforcedActions)
}

func TestRunCriticalTreasuryBlocked(t *testing.T) {
	snapshot := domain.NewTreasurySnapshot("0x2", []domain.Position{
		{Token: "ETH", Balance: 600, USDValue: 2_000_000},
	})

	result := newPipeline(&stubWatcher{snapshot: snapshot}, nil).Run(context.Background(), "0x2")

	require.Equal(t, domain.RiskHigh, result.Risk.Level)
	require.False(t, result.Governance.Approved)
	require.Len(t, result.Governance.EnforcedActions, 1)
	require.Equal(t, domain.ActionAlert, result.Governance.EnforcedActions[0].Type)
}

func TestRunEmergencyResultOnWatcherFailure(t *testing.T) {
	svc := newPipeline(&stubWatcher{err: errors.New("RPC unreachable")}, nil)

	result := svc.Run(context.Background(), "0x3")

	require.Nil(t, result.Snapshot)
	require.Equal(t, domain.RiskHigh, result.Risk.Level)
	require.Zero(t, result.Risk.Score)
	require.Equal(t, []string{"System failure during treasury analysis"}, result.Risk.Issues)

	require.Len(t, result.Plan.Actions, 1)
	require.Equal(t, domain.ActionAlert, result.Plan.Actions[0].Type)

	require.False(t, result.Governance.Approved)
	require.Len(t, result.Governance.EnforcedActions, 1)
	require.Equal(t, domain.ActionAlert, result.Governance.EnforcedActions[0].Type)
}

func TestRunRecordsHistory(t *testing.T) {
	store := history.NewStore(10)
	snapshot := domain.NewTreasurySnapshot("0x4", []domain.Position{
		{Token: "ETH", Balance: 1, USDValue: 3500},
	})

	svc := newPipeline(&stubWatcher{snapshot: snapshot}, store)
	svc.Run(context.Background(), "0x4")
	svc.Run(context.Background(), "0x4")

	require.Equal(t, 2, store.Len())
}

func TestRunRecordsEmergencyResults(t *testing.T) {
	store := history.NewStore(10)
	svc := newPipeline(&stubWatcher{err: errors.New("down")}, store)

	svc.Run(context.Background(), "0x5")

	recent := store.Recent(1)
	require.Len(t, recent, 1)
	require.Nil(t, recent[0].Snapshot)
}
