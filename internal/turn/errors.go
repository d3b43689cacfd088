package turn

import (
	"context"
	"errors"
	"strings"

	"github.com/cardflow-sh/cardflow/internal/llm"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// TurnError is a turn-level failure carrying its external classification.
// The transport layer maps it onto an HTTP status or a stream error event.
type TurnError struct {
	Code    wire.ErrorCode
	Message string
	cause   error
}

func (e *TurnError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *TurnError) Unwrap() error {
	return e.cause
}

// budgetStatus reports whether an HTTP status from the provider signals
// rate limiting or billing exhaustion.
func budgetStatus(code int) bool {
	return code == 429 || code == 402
}

// budgetSignatures are matched against provider failure text when no status
// code is available. Matching is best-effort fallback; the status code wins
// when present.
var budgetSignatures = []string{
	"rate limit",
	"rate_limit",
	"quota",
	"billing",
	"credit",
	"insufficient",
}

// Classify folds an internal failure into one of the two external error
// categories: BUDGET_EXCEEDED for rate limiting and billing exhaustion,
// API_ERROR for everything else.
func Classify(err error) *TurnError {
	var terr *TurnError
	if errors.As(err, &terr) {
		return terr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TurnError{
			Code:    wire.CodeAPIError,
			Message: "turn exceeded its time limit",
			cause:   err,
		}
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		if budgetStatus(perr.StatusCode) || matchesBudgetSignature(perr.Message) {
			return &TurnError{
				Code:    wire.CodeBudgetExceeded,
				Message: "Rate limit or credit budget exceeded. Check your provider plan and billing.",
				cause:   err,
			}
		}
		return &TurnError{Code: wire.CodeAPIError, Message: perr.Message, cause: err}
	}

	if matchesBudgetSignature(err.Error()) {
		return &TurnError{
			Code:    wire.CodeBudgetExceeded,
			Message: "Rate limit or credit budget exceeded. Check your provider plan and billing.",
			cause:   err,
		}
	}

	return &TurnError{Code: wire.CodeAPIError, Message: err.Error(), cause: err}
}

func matchesBudgetSignature(msg string) bool {
	lower := strings.ToLower(msg)
	for _, sig := range budgetSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
