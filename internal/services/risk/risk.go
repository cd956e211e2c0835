// Package risk scores treasury snapshots, with an LLM-assisted primary path
// and a deterministic fallback.
package risk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
	"github.com/fyclub/treasury-guardian/internal/llm"
)

// Penalties applied by the deterministic fallback. This is the two-penalty
// variant: large treasuries and single-asset concentration each subtract a
// fixed amount from a base score of 100, with no floor clamp.
const (
	largeTreasuryUSD     = 100_000
	largeTreasuryPenalty = 25
	singleAssetPenalty   = 40
)

const promptTemplate = `You are a professional DeFi risk analyst.

Analyze this treasury snapshot and RETURN STRICT JSON ONLY in this exact format:

{
  "level": "LOW" | "MEDIUM" | "HIGH",
  "score": number,
  "issues": string[]
}

TREASURY SNAPSHOT:
%s
`

// Service derives a risk result from a snapshot. Score never fails outward:
// every model-path error degrades to the deterministic fallback.
type Service struct {
	llmClient llm.Client
	logger    *zap.Logger
}

// New creates a risk scorer. llmClient may be nil to run fallback-only.
func New(llmClient llm.Client, logger *zap.Logger) *Service {
	return &Service{llmClient: llmClient, logger: logger}
}

// Score assesses the snapshot. The model result is validated for shape only;
// it is not rebucketed against the score thresholds. Distrusting the model
// output is the governance stage's job.
func (s *Service) Score(ctx context.Context, snapshot domain.TreasurySnapshot) domain.RiskResult {
	if s.llmClient != nil {
		result, err := s.scoreWithModel(ctx, snapshot)
		if err == nil {
			return result
		}
		s.logger.Warn("model risk scoring failed, using deterministic fallback",
			zap.String("address", snapshot.Address),
			zap.Error(err))
	}

	return Fallback(snapshot)
}

func (s *Service) scoreWithModel(ctx context.Context, snapshot domain.TreasurySnapshot) (domain.RiskResult, error) {
	snapshotJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return domain.RiskResult{}, errors.Wrap(err, "failed to marshal snapshot")
	}

	out, err := s.llmClient.Generate(ctx, fmt.Sprintf(promptTemplate, snapshotJSON))
	if err != nil {
		return domain.RiskResult{}, err
	}

	span, err := llm.ExtractJSON(out)
	if err != nil {
		return domain.RiskResult{}, err
	}

	var result domain.RiskResult
	if err := json.Unmarshal(span, &result); err != nil {
		return domain.RiskResult{}, errors.Wrap(err, "failed to unmarshal risk result")
	}
	if err := result.Validate(); err != nil {
		return domain.RiskResult{}, errors.Wrap(err, "invalid model risk output")
	}

	return result, nil
}

// Fallback is the deterministic scorer. It is pure: identical snapshots yield
// identical results.
func Fallback(snapshot domain.TreasurySnapshot) domain.RiskResult {
	issues := []string{}
	score := float64(100)

	if snapshot.TotalUSDValue > largeTreasuryUSD {
		issues = append(issues, "Large treasury exposure detected.")
		score -= largeTreasuryPenalty
	}

	if len(snapshot.Positions) == 1 {
		issues = append(issues, "Treasury fully concentrated in a single asset.")
		score -= singleAssetPenalty
	}

	return domain.RiskResult{
		Level:  domain.LevelForScore(score),
		Score:  score,
		Issues: issues,
	}
}
