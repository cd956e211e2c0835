package governance

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
	called   bool
}

func (f *fakeLLM) Generate(context.Context, string) (string, error) {
	f.called = true
	return f.response, f.err
}

func highRisk() domain.RiskResult {
	return domain.RiskResult{Level: domain.RiskHigh, Score: 20, Issues: []string{"bad"}}
}

func mixedPlan() domain.ProtectionPlan {
	return domain.ProtectionPlan{Actions: []domain.ProtectionAction{
		{Type: domain.ActionAlert, Message: "look"},
		{Type: domain.ActionReduce, Message: "trim"},
		{Type: domain.ActionDiversify, Message: "spread"},
	}}
}

func TestHardRuleBlocksLargeHighRiskTreasury(t *testing.T) {
	// an approving model must never be consulted when the hard rule fires
	model := &fakeLLM{response: `{"approved": true, "reason": "all good", "enforcedActions": []}`}
	svc := New(model, zap.NewNop())

	decision := svc.Enforce(context.Background(), highRisk(), mixedPlan(), 2_000_000)

	require.False(t, decision.Approved)
	require.Contains(t, decision.Reason, "Critical risk")
	require.Len(t, decision.EnforcedActions, 1)
	require.Equal(t, domain.ActionAlert, decision.EnforcedActions[0].Type)
	require.Contains(t, decision.EnforcedActions[0].Message, "blocked")
	require.False(t, model.called)
}

func TestHardRuleBoundaryIsExclusive(t *testing.T) {
	svc := New(nil, zap.NewNop())

	// exactly 1,000,000 does not trip the rule; HIGH then falls through to
	// the blocking default of the deterministic policy
	decision := svc.Enforce(context.Background(), highRisk(), mixedPlan(), 1_000_000)
	require.Contains(t, decision.Reason, "Unrecognized risk state")
}

func TestFallbackMediumStripsReduce(t *testing.T) {
	risk := domain.RiskResult{Level: domain.RiskMedium, Score: 60, Issues: []string{}}

	decision := Fallback(risk, mixedPlan())

	require.True(t, decision.Approved)
	require.Len(t, decision.EnforcedActions, 2)
	for _, a := range decision.EnforcedActions {
		require.NotEqual(t, domain.ActionReduce, a.Type)
	}
}

func TestFallbackLowKeepsPlanUnchanged(t *testing.T) {
	risk := domain.RiskResult{Level: domain.RiskLow, Score: 90, Issues: []string{}}
	plan := mixedPlan()

	decision := Fallback(risk, plan)

	require.True(t, decision.Approved)
	require.Equal(t, plan.Actions, decision.EnforcedActions)
}

func TestFallbackUnknownLevelBlocks(t *testing.T) {
	risk := domain.RiskResult{Level: "WEIRD", Score: 50, Issues: []string{}}

	decision := Fallback(risk, mixedPlan())

	require.False(t, decision.Approved)
	require.Len(t, decision.EnforcedActions, 1)
	require.Equal(t, domain.ActionAlert, decision.EnforcedActions[0].Type)
	require.Contains(t, decision.EnforcedActions[0].Message, "fallback activated")
}

func TestFallbackIsIdempotent(t *testing.T) {
	risk := domain.RiskResult{Level: domain.RiskMedium, Score: 60, Issues: []string{}}
	first := Fallback(risk, mixedPlan())
	second := Fallback(risk, mixedPlan())
	require.Equal(t, first, second)
}

func TestModelDecisionNormalizesUnknownTypes(t *testing.T) {
	svc := New(&fakeLLM{
		response: `{"approved": true, "reason": "fine", "enforcedActions": [{"type": "LIQUIDATE", "message": "sell"}, {"type": "REDUCE", "message": "trim"}]}`,
	}, zap.NewNop())

	risk := domain.RiskResult{Level: domain.RiskLow, Score: 90, Issues: []string{}}
	decision := svc.Enforce(context.Background(), risk, mixedPlan(), 10_000)

	require.True(t, decision.Approved)
	require.Len(t, decision.EnforcedActions, 2)
	// unknown type coerced to ALERT, known type kept, nothing dropped
	require.Equal(t, domain.ActionAlert, decision.EnforcedActions[0].Type)
	require.Equal(t, domain.ActionReduce, decision.EnforcedActions[1].Type)
}

func TestModelErrorFallsBackToPolicy(t *testing.T) {
	svc := New(&fakeLLM{err: errors.New("backend down")}, zap.NewNop())

	risk := domain.RiskResult{Level: domain.RiskLow, Score: 90, Issues: []string{}}
	plan := mixedPlan()
	decision := svc.Enforce(context.Background(), risk, plan, 10_000)

	require.True(t, decision.Approved)
	require.Equal(t, plan.Actions, decision.EnforcedActions)
}

func TestModelMissingFieldsFallsBack(t *testing.T) {
	svc := New(&fakeLLM{response: `{"reason": "no verdict here", "enforcedActions": []}`}, zap.NewNop())

	risk := domain.RiskResult{Level: domain.RiskMedium, Score: 60, Issues: []string{}}
	decision := svc.Enforce(context.Background(), risk, mixedPlan(), 10_000)

	require.Contains(t, decision.Reason, "Moderate risk")
}
