package domain

import "github.com/pkg/errors"

var (
	ErrInvalidRiskLevel  = errors.New("risk level must be LOW, MEDIUM or HIGH")
	ErrMissingIssues     = errors.New("issues list is required")
	ErrInvalidActionType = errors.New("action type must be ALERT, REDUCE or DIVERSIFY")
	ErrEmptyMessage      = errors.New("action message is required")
)
