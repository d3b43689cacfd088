// Package dispatch bridges the schema catalog to the model-invocation
// protocol. A Registry validates each invocation's input against the
// catalog, fills collection defaults, and runs the registered handler.
//
// In cardflow the handlers are the identity function: the model-produced
// structured value is both the computation and the final artifact. The
// registry still goes through the full validate-then-handle cycle so the
// contract holds if a tool ever grows server-side enrichment.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cardflow-sh/cardflow/internal/catalog"
	"github.com/cardflow-sh/cardflow/internal/log"
)

// ErrUnknownTool is returned when an invocation names a tool absent from the
// registry. This is a configuration error — a defect, not a model input
// problem — and must never be folded into a validation error.
var ErrUnknownTool = errors.New("unknown tool")

// ErrDuplicateTool is returned when a name is registered twice.
var ErrDuplicateTool = errors.New("tool already registered")

// Handler processes a validated, default-filled payload and returns the
// value to surface as the tool's output. Handlers must not mutate the input
// they return; dispatch results are rendered and re-serialized as-is.
type Handler func(ctx context.Context, input catalog.Payload) (catalog.Payload, error)

// Identity returns the input unchanged. Every display-only tool uses it.
func Identity(_ context.Context, input catalog.Payload) (catalog.Payload, error) {
	return input, nil
}

// State is the terminal state of a dispatched invocation.
type State string

const (
	// StateOutputAvailable means the handler ran and Output is populated.
	StateOutputAvailable State = "output-available"

	// StateOutputError means the input failed validation or the handler
	// errored; ErrorText describes the failure.
	StateOutputError State = "output-error"
)

// Result is the terminal outcome of one tool invocation.
type Result struct {
	State     State
	Output    catalog.Payload // set iff State == StateOutputAvailable
	ErrorText string          // set iff State == StateOutputError
}

// Definition is the model-facing view of a registered tool.
type Definition struct {
	Name        catalog.Name
	Description string
	InputSchema *jsonschema.Schema
}

type registration struct {
	entry   *catalog.Entry
	handler Handler
}

// Registry maps catalog names to handlers. Membership is closed after
// construction: Register is only called while building the registry.
type Registry struct {
	cat    *catalog.Catalog
	tools  map[catalog.Name]registration
	order  []catalog.Name
	logger log.Logger
}

// NewRegistry builds a registry over the given catalog with every tool bound
// to the identity handler.
func NewRegistry(cat *catalog.Catalog, logger log.Logger) (*Registry, error) {
	r := &Registry{
		cat:    cat,
		tools:  make(map[catalog.Name]registration, 15),
		logger: logger,
	}
	for _, e := range cat.Entries() {
		if err := r.Register(e.Name, Identity); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register binds a handler to a catalog tool.
// The name must be a catalog member and must not already be registered.
func (r *Registry) Register(n catalog.Name, h Handler) error {
	e, ok := r.cat.Entry(n)
	if !ok {
		return fmt.Errorf("%w: %q is not a catalog member", ErrUnknownTool, n)
	}
	if _, exists := r.tools[n]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, n)
	}
	r.tools[n] = registration{entry: e, handler: h}
	r.order = append(r.order, n)
	return nil
}

// Definitions returns the model-facing tool definitions in catalog order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, n := range r.order {
		reg := r.tools[n]
		out = append(out, Definition{
			Name:        n,
			Description: reg.entry.Description,
			InputSchema: reg.entry.Schema,
		})
	}
	return out
}

// Dispatch validates rawInput against the named tool's schema and runs its
// handler.
//
// Outcomes:
//   - unknown tool: (Result{}, ErrUnknownTool) — configuration error, the
//     caller decides how loudly to fail; it is never absorbed into the Result.
//   - schema violation: Result{State: output-error} naming the failed field;
//     the handler is NOT invoked.
//   - success: Result{State: output-available} with the handler's output.
func (r *Registry) Dispatch(ctx context.Context, n catalog.Name, rawInput json.RawMessage) (Result, error) {
	reg, ok := r.tools[n]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, n)
	}

	input, err := r.cat.Decode(n, rawInput)
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			r.logger.Warn("tool input failed validation",
				"tool", n,
				"detail", verr.Detail)
			return Result{State: StateOutputError, ErrorText: verr.Error()}, nil
		}
		return Result{}, err
	}

	output, err := reg.handler(ctx, input)
	if err != nil {
		r.logger.Error("tool handler failed", "tool", n, "error", err)
		return Result{State: StateOutputError, ErrorText: err.Error()}, nil
	}

	return Result{State: StateOutputAvailable, Output: output}, nil
}
