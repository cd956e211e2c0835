// Package workflow sequences the treasury governance pipeline.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
)

// Emergency result contents, returned whenever a pipeline stage fails.
const (
	emergencyRiskIssue         = "System failure during treasury analysis"
	emergencyPlanAlert         = "Emergency mode: manual treasury review required."
	emergencyGovernanceReason  = "Emergency shutdown: treasury analysis failed."
	emergencyGovernanceMessage = "Automation disabled due to system failure."
)

type snapshotter interface {
	Snapshot(ctx context.Context, address string) (domain.TreasurySnapshot, error)
}

type riskScorer interface {
	Score(ctx context.Context, snapshot domain.TreasurySnapshot) domain.RiskResult
}

type protectionPlanner interface {
	Plan(ctx context.Context, risk domain.RiskResult) domain.ProtectionPlan
}

type governanceEnforcer interface {
	Enforce(ctx context.Context, risk domain.RiskResult, plan domain.ProtectionPlan, totalUSDValue float64) domain.GovernanceDecision
}

type recorder interface {
	Add(result domain.ScanResult)
}

// Service runs the four pipeline stages in order and owns the single
// top-level failure boundary: Run never returns an error.
type Service struct {
	watcher    snapshotter
	risk       riskScorer
	planner    protectionPlanner
	governance governanceEnforcer
	history    recorder
	logger     *zap.Logger
}

// New creates the workflow. history may be nil when no record keeping is wanted.
func New(watcher snapshotter, risk riskScorer, planner protectionPlanner, governance governanceEnforcer, history recorder, logger *zap.Logger) *Service {
	return &Service{
		watcher:    watcher,
		risk:       risk,
		planner:    planner,
		governance: governance,
		history:    history,
		logger:     logger,
	}
}

// Run scans the address through snapshot, risk, planning and governance. Each
// stage consumes only the previous stage's output; all values are created
// fresh for this invocation, so concurrent runs share nothing mutable.
func (s *Service) Run(ctx context.Context, address string) domain.ScanResult {
	result := domain.ScanResult{
		ID:        uuid.NewString(),
		Address:   address,
		Timestamp: time.Now().UTC(),
	}

	snapshot, err := s.watcher.Snapshot(ctx, address)
	if err != nil {
		s.logger.Error("treasury scan failed, returning emergency result",
			zap.String("address", address),
			zap.Error(err))
		return s.record(emergencyResult(result))
	}

	risk := s.risk.Score(ctx, snapshot)
	plan := s.planner.Plan(ctx, risk)
	decision := s.governance.Enforce(ctx, risk, plan, snapshot.TotalUSDValue)

	s.logger.Info("treasury scan completed",
		zap.String("address", address),
		zap.String("risk_level", string(risk.Level)),
		zap.Float64("score", risk.Score),
		zap.Bool("approved", decision.Approved))

	result.Snapshot = &snapshot
	result.Risk = risk
	result.Plan = plan
	result.Governance = decision
	return s.record(result)
}

func (s *Service) record(result domain.ScanResult) domain.ScanResult {
	if s.history != nil {
		s.history.Add(result)
	}
	return result
}

// emergencyResult is the fixed degraded result: no snapshot, maximum
// severity, a single alert plan and a blocking governance verdict.
func emergencyResult(base domain.ScanResult) domain.ScanResult {
	base.Snapshot = nil
	base.Risk = domain.RiskResult{
		Level:  domain.RiskHigh,
		Score:  0,
		Issues: []string{emergencyRiskIssue},
	}
	base.Plan = domain.ProtectionPlan{
		Actions: []domain.ProtectionAction{
			{Type: domain.ActionAlert, Message: emergencyPlanAlert},
		},
	}
	base.Governance = domain.GovernanceDecision{
		Approved: false,
		Reason:   emergencyGovernanceReason,
		EnforcedActions: []domain.ProtectionAction{
			{Type: domain.ActionAlert, Message: emergencyGovernanceMessage},
		},
	}
	return base
}
