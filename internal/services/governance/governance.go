// Package governance applies the safety policy that approves or blocks a
// protection plan.
package governance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
	"github.com/fyclub/treasury-guardian/internal/llm"
)

// CriticalTreasuryUSD is the treasury size above which a HIGH risk level
// blocks all automation unconditionally.
const CriticalTreasuryUSD = 1_000_000

const (
	criticalBlockReason = "Critical risk on a large treasury. All automated actions are blocked. Manual intervention required."
	criticalBlockAlert  = "Governance has blocked all automation due to critical risk."

	mediumApproveReason = "Moderate risk detected. Only safe diversification actions allowed."
	lowApproveReason    = "Low risk treasury. All protection actions approved."

	fallbackBlockReason = "Unrecognized risk state. Governance blocked execution."
	fallbackBlockAlert  = "Governance fallback activated. No automated actions allowed."
)

const promptTemplate = `You are the final safety authority for a DAO treasury.

Your job:
- Enforce strict treasury security rules
- Block unsafe actions
- Approve only protective ones

YOU MUST RETURN STRICT JSON ONLY in this exact format:

{
  "approved": boolean,
  "reason": string,
  "enforcedActions": [
    { "type": "ALERT" | "REDUCE" | "DIVERSIFY", "message": string }
  ]
}

INPUT:
%s
`

// policyInput is the exact shape embedded in the governance prompt.
type policyInput struct {
	Risk          domain.RiskResult     `json:"risk"`
	Plan          domain.ProtectionPlan `json:"plan"`
	TotalUSDValue float64               `json:"totalUsdValue"`
}

// rawDecision mirrors GovernanceDecision but with untrusted action types, so
// normalization is explicit rather than relying on enum unmarshalling.
type rawDecision struct {
	Approved        *bool  `json:"approved"`
	Reason          string `json:"reason"`
	EnforcedActions []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"enforcedActions"`
}

// Service enforces governance policy. Enforce never fails outward.
type Service struct {
	llmClient llm.Client
	logger    *zap.Logger
}

// New creates a governance enforcer. llmClient may be nil to run rules-only.
func New(llmClient llm.Client, logger *zap.Logger) *Service {
	return &Service{llmClient: llmClient, logger: logger}
}

// Enforce decides whether the plan may run. The critical-treasury rule is
// evaluated first, unconditionally, and can never be overridden by the model
// path or the fallback.
func (s *Service) Enforce(ctx context.Context, risk domain.RiskResult, plan domain.ProtectionPlan, totalUSDValue float64) domain.GovernanceDecision {
	if risk.Level == domain.RiskHigh && totalUSDValue > CriticalTreasuryUSD {
		return domain.GovernanceDecision{
			Approved: false,
			Reason:   criticalBlockReason,
			EnforcedActions: []domain.ProtectionAction{
				{Type: domain.ActionAlert, Message: criticalBlockAlert},
			},
		}
	}

	if s.llmClient != nil {
		decision, err := s.enforceWithModel(ctx, risk, plan, totalUSDValue)
		if err == nil {
			return decision
		}
		s.logger.Warn("model governance check failed, using deterministic fallback",
			zap.String("risk_level", string(risk.Level)),
			zap.Error(err))
	}

	return Fallback(risk, plan)
}

func (s *Service) enforceWithModel(ctx context.Context, risk domain.RiskResult, plan domain.ProtectionPlan, totalUSDValue float64) (domain.GovernanceDecision, error) {
	inputJSON, err := json.MarshalIndent(policyInput{
		Risk:          risk,
		Plan:          plan,
		TotalUSDValue: totalUSDValue,
	}, "", "  ")
	if err != nil {
		return domain.GovernanceDecision{}, errors.Wrap(err, "failed to marshal governance input")
	}

	out, err := s.llmClient.Generate(ctx, fmt.Sprintf(promptTemplate, inputJSON))
	if err != nil {
		return domain.GovernanceDecision{}, err
	}

	span, err := llm.ExtractJSON(out)
	if err != nil {
		return domain.GovernanceDecision{}, err
	}

	var raw rawDecision
	if err := json.Unmarshal(span, &raw); err != nil {
		return domain.GovernanceDecision{}, errors.Wrap(err, "failed to unmarshal governance decision")
	}
	if raw.Approved == nil {
		return domain.GovernanceDecision{}, errors.New("governance decision is missing the approved field")
	}
	if raw.Reason == "" {
		return domain.GovernanceDecision{}, errors.New("governance decision is missing the reason field")
	}
	if raw.EnforcedActions == nil {
		return domain.GovernanceDecision{}, errors.New("governance decision is missing enforced actions")
	}

	// Unknown action types are coerced to ALERT, never dropped and never
	// allowed to extend the closed action set.
	enforced := make([]domain.ProtectionAction, 0, len(raw.EnforcedActions))
	for _, a := range raw.EnforcedActions {
		enforced = append(enforced, domain.ProtectionAction{
			Type:    domain.NormalizeActionType(a.Type),
			Message: a.Message,
		})
	}

	return domain.GovernanceDecision{
		Approved:        *raw.Approved,
		Reason:          raw.Reason,
		EnforcedActions: enforced,
	}, nil
}

// Fallback applies the rule-based policy keyed on risk level. It is pure and
// total: syntactically valid but unknown levels are blocked.
func Fallback(risk domain.RiskResult, plan domain.ProtectionPlan) domain.GovernanceDecision {
	switch risk.Level {
	case domain.RiskMedium:
		safe := []domain.ProtectionAction{}
		for _, a := range plan.Actions {
			if a.Type == domain.ActionDiversify || a.Type == domain.ActionAlert {
				safe = append(safe, a)
			}
		}
		return domain.GovernanceDecision{
			Approved:        true,
			Reason:          mediumApproveReason,
			EnforcedActions: safe,
		}
	case domain.RiskLow:
		return domain.GovernanceDecision{
			Approved:        true,
			Reason:          lowApproveReason,
			EnforcedActions: plan.Actions,
		}
	default:
		return domain.GovernanceDecision{
			Approved: false,
			Reason:   fallbackBlockReason,
			EnforcedActions: []domain.ProtectionAction{
				{Type: domain.ActionAlert, Message: fallbackBlockAlert},
			},
		}
	}
}
