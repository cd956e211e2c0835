package risk

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(context.Context, string) (string, error) {
	return f.response, f.err
}

func singleAssetSnapshot(totalUSD float64) domain.TreasurySnapshot {
	return domain.NewTreasurySnapshot("0x1", []domain.Position{
		{Token: "ETH", Balance: 10, USDValue: totalUSD},
	})
}

func TestFallbackMediumSingleAsset(t *testing.T) {
	// 50k single-asset treasury: only the concentration penalty applies
	result := Fallback(singleAssetSnapshot(50_000))

	require.Equal(t, domain.RiskMedium, result.Level)
	require.InDelta(t, 60, result.Score, 1e-9)
	require.Len(t, result.Issues, 1)
	require.Contains(t, result.Issues[0], "single asset")
}

func TestFallbackHighLargeConcentrated(t *testing.T) {
	result := Fallback(singleAssetSnapshot(2_000_000))

	require.Equal(t, domain.RiskHigh, result.Level)
	require.InDelta(t, 35, result.Score, 1e-9)
	require.Len(t, result.Issues, 2)
}

func TestFallbackLowDiversifiedSmall(t *testing.T) {
	snapshot := domain.NewTreasurySnapshot("0x2", []domain.Position{
		{Token: "ETH", Balance: 1, USDValue: 3500},
		{Token: "ETH", Balance: 2, USDValue: 7000},
	})

	result := Fallback(snapshot)
	require.Equal(t, domain.RiskLow, result.Level)
	require.InDelta(t, 100, result.Score, 1e-9)
	require.Empty(t, result.Issues)
}

func TestFallbackLevelMatchesScoreBucket(t *testing.T) {
	snapshots := []domain.TreasurySnapshot{
		singleAssetSnapshot(50_000),
		singleAssetSnapshot(500_000),
		domain.NewTreasurySnapshot("0x3", nil),
	}
	for _, snapshot := range snapshots {
		result := Fallback(snapshot)
		require.Equal(t, domain.LevelForScore(result.Score), result.Level)
	}
}

func TestFallbackIsIdempotent(t *testing.T) {
	snapshot := singleAssetSnapshot(150_000)
	first := Fallback(snapshot)
	second := Fallback(snapshot)
	require.Equal(t, first, second)
}

func TestScoreUsesModelResult(t *testing.T) {
	svc := New(&fakeLLM{
		response: "```json\n{\"level\": \"HIGH\", \"score\": 20, \"issues\": [\"model issue\"]}\n```",
	}, zap.NewNop())

	result := svc.Score(context.Background(), singleAssetSnapshot(1000))
	require.Equal(t, domain.RiskHigh, result.Level)
	require.InDelta(t, 20, result.Score, 1e-9)
	require.Equal(t, []string{"model issue"}, result.Issues)
}

func TestScoreFallsBackOnModelError(t *testing.T) {
	svc := New(&fakeLLM{err: errors.New("backend down")}, zap.NewNop())

	result := svc.Score(context.Background(), singleAssetSnapshot(50_000))
	require.Equal(t, domain.RiskMedium, result.Level)
	require.InDelta(t, 60, result.Score, 1e-9)
}

func TestScoreFallsBackOnInvalidShape(t *testing.T) {
	// valid JSON, invalid enumeration member
	svc := New(&fakeLLM{response: `{"level": "EXTREME", "score": 5, "issues": []}`}, zap.NewNop())

	result := svc.Score(context.Background(), singleAssetSnapshot(50_000))
	require.Equal(t, domain.RiskMedium, result.Level)
}

func TestScoreFallsBackOnProseOnlyResponse(t *testing.T) {
	svc := New(&fakeLLM{response: "the treasury looks risky"}, zap.NewNop())

	result := svc.Score(context.Background(), singleAssetSnapshot(50_000))
	require.Equal(t, domain.RiskMedium, result.Level)
}

func TestScoreWithoutClientUsesFallback(t *testing.T) {
	svc := New(nil, zap.NewNop())

	result := svc.Score(context.Background(), singleAssetSnapshot(50_000))
	require.Equal(t, domain.RiskMedium, result.Level)
	require.InDelta(t, 60, result.Score, 1e-9)
}
