// Package planner turns a risk result into a protection plan.
package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
	"github.com/fyclub/treasury-guardian/internal/llm"
)

const promptTemplate = `You are a DeFi treasury strategist.

Based on the given risk result, create a protection plan using ONLY these
action types:
- ALERT
- REDUCE
- DIVERSIFY

YOU MUST RETURN STRICT JSON ONLY in this exact format:

{
  "actions": [
    { "type": "ALERT" | "REDUCE" | "DIVERSIFY", "message": string }
  ]
}

RISK RESULT:
%s
`

// Service derives protection plans. Plan never fails outward.
type Service struct {
	llmClient llm.Client
	logger    *zap.Logger
}

// New creates a planner. llmClient may be nil to run fallback-only.
func New(llmClient llm.Client, logger *zap.Logger) *Service {
	return &Service{llmClient: llmClient, logger: logger}
}

// Plan proposes protective actions for the given risk result.
func (s *Service) Plan(ctx context.Context, risk domain.RiskResult) domain.ProtectionPlan {
	if s.llmClient != nil {
		plan, err := s.planWithModel(ctx, risk)
		if err == nil {
			return plan
		}
		s.logger.Warn("model planning failed, using deterministic fallback",
			zap.String("risk_level", string(risk.Level)),
			zap.Error(err))
	}

	return Fallback(risk)
}

func (s *Service) planWithModel(ctx context.Context, risk domain.RiskResult) (domain.ProtectionPlan, error) {
	riskJSON, err := json.MarshalIndent(risk, "", "  ")
	if err != nil {
		return domain.ProtectionPlan{}, errors.Wrap(err, "failed to marshal risk result")
	}

	out, err := s.llmClient.Generate(ctx, fmt.Sprintf(promptTemplate, riskJSON))
	if err != nil {
		return domain.ProtectionPlan{}, err
	}

	span, err := llm.ExtractJSON(out)
	if err != nil {
		return domain.ProtectionPlan{}, err
	}

	var plan domain.ProtectionPlan
	if err := json.Unmarshal(span, &plan); err != nil {
		return domain.ProtectionPlan{}, errors.Wrap(err, "failed to unmarshal protection plan")
	}
	if err := plan.Validate(); err != nil {
		return domain.ProtectionPlan{}, errors.Wrap(err, "invalid model plan output")
	}

	return plan, nil
}

// Fallback builds the rule-based plan for a risk level. Action order is fixed
// and significant for display: for HIGH the alert precedes the reduction.
func Fallback(risk domain.RiskResult) domain.ProtectionPlan {
	actions := []domain.ProtectionAction{}

	switch risk.Level {
	case domain.RiskHigh:
		actions = append(actions,
			domain.ProtectionAction{Type: domain.ActionAlert, Message: "Immediate risk detected. Manual review required."},
			domain.ProtectionAction{Type: domain.ActionReduce, Message: "Reduce high exposure positions immediately."},
		)
	case domain.RiskMedium:
		actions = append(actions,
			domain.ProtectionAction{Type: domain.ActionDiversify, Message: "Diversify treasury across multiple stable assets."},
		)
	case domain.RiskLow:
		actions = append(actions,
			domain.ProtectionAction{Type: domain.ActionAlert, Message: "Treasury is currently stable."},
		)
	}

	return domain.ProtectionPlan{Actions: actions}
}
