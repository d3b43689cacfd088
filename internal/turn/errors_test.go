package turn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardflow-sh/cardflow/internal/llm"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want wire.ErrorCode
	}{
		{
			name: "http 429 is budget",
			err:  &llm.ProviderError{StatusCode: 429, Message: "too many requests"},
			want: wire.CodeBudgetExceeded,
		},
		{
			name: "http 402 is budget",
			err:  &llm.ProviderError{StatusCode: 402, Message: "payment required"},
			want: wire.CodeBudgetExceeded,
		},
		{
			name: "http 500 is api error",
			err:  &llm.ProviderError{StatusCode: 500, Message: "overloaded"},
			want: wire.CodeAPIError,
		},
		{
			name: "rate_limit signature without status",
			err:  &llm.ProviderError{Message: "rate_limit_error: slow down"},
			want: wire.CodeBudgetExceeded,
		},
		{
			name: "billing signature in plain error",
			err:  errors.New("your billing account has a problem"),
			want: wire.CodeBudgetExceeded,
		},
		{
			name: "insufficient credit signature",
			err:  fmt.Errorf("upstream: %w", errors.New("Insufficient credits remaining")),
			want: wire.CodeBudgetExceeded,
		},
		{
			name: "quota signature uppercase",
			err:  errors.New("QUOTA exhausted for project"),
			want: wire.CodeBudgetExceeded,
		},
		{
			name: "generic failure",
			err:  errors.New("connection reset by peer"),
			want: wire.CodeAPIError,
		},
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("model call: %w", context.DeadlineExceeded),
			want: wire.CodeAPIError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			terr := Classify(tt.err)
			assert.Equal(t, tt.want, terr.Code)
			assert.NotEmpty(t, terr.Message)
		})
	}
}

func TestClassifyPreservesExistingTurnError(t *testing.T) {
	t.Parallel()

	orig := &TurnError{Code: wire.CodeBudgetExceeded, Message: "already classified"}
	assert.Same(t, orig, Classify(orig))
}

func TestTurnErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := &llm.ProviderError{StatusCode: 429, Message: "rate limited"}
	terr := Classify(cause)
	assert.ErrorIs(t, terr, cause)
}
