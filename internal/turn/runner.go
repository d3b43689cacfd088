// Package turn orchestrates one conversation turn: it drives the model
// through a bounded loop of tool-call steps, dispatches each invocation,
// and yields the protocol event stream the client renders from.
package turn

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cardflow-sh/cardflow/internal/catalog"
	"github.com/cardflow-sh/cardflow/internal/dispatch"
	"github.com/cardflow-sh/cardflow/internal/llm"
	"github.com/cardflow-sh/cardflow/internal/log"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// Options configures a Runner.
type Options struct {
	// MaxSteps bounds sequential model round trips per turn. Hitting the
	// bound is a graceful cutoff, not an error.
	MaxSteps int

	// Timeout is the wall-clock ceiling for a whole turn.
	Timeout time.Duration

	// RateLimit and RateBurst throttle model calls across concurrent turns.
	// Zero RateLimit disables throttling.
	RateLimit float64
	RateBurst int
}

// Runner executes turns against a model client and a tool registry.
type Runner struct {
	client   llm.Client
	registry *dispatch.Registry
	logger   log.Logger
	maxSteps int
	timeout  time.Duration
	limiter  *rate.Limiter
}

// NewRunner builds a turn runner.
func NewRunner(client llm.Client, registry *dispatch.Registry, logger log.Logger, opts Options) *Runner {
	if opts.MaxSteps < 1 {
		opts.MaxSteps = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Runner{
		client:   client,
		registry: registry,
		logger:   logger,
		maxSteps: opts.MaxSteps,
		timeout:  opts.Timeout,
		limiter:  limiter,
	}
}

// Run executes one turn over the given history and yields protocol events
// in order: message-start, then interleaved text and tool-call events, then
// message-complete and turn-complete. The message-start event is withheld
// until the first model-derived event arrives, so a failure before the
// model produces anything yields only the error and the caller can still
// reject the turn wholesale. A turn-level failure ends the sequence with a
// *TurnError; per-invocation failures surface as tool-call-error events and
// do not stop the turn.
func (r *Runner) Run(ctx context.Context, history []wire.Message) iter.Seq2[wire.Event, error] {
	return func(yield func(wire.Event, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		messageID := uuid.NewString()
		started := false
		send := func(ev wire.Event, err error) bool {
			if err != nil {
				return yield(wire.Event{}, err)
			}
			if !started {
				started = true
				if !yield(wire.Event{Type: wire.EventMessageStart, MessageID: messageID}, nil) {
					return false
				}
			}
			return yield(ev, nil)
		}

		tools := r.toolDefinitions()
		var steps []llm.Step
		toolCalls := 0

		for step := 0; step < r.maxSteps; step++ {
			if r.limiter != nil {
				if err := r.limiter.Wait(ctx); err != nil {
					send(wire.Event{}, Classify(err))
					return
				}
			}

			result, ok := r.runStep(ctx, send, messageID, llm.Request{
				System:  systemPrompt,
				History: history,
				Steps:   steps,
				Tools:   tools,
			})
			if !ok {
				return
			}

			dispatched, ok := r.dispatchStep(ctx, send, messageID, result)
			if !ok {
				return
			}
			toolCalls += len(dispatched.Results)
			steps = append(steps, dispatched)

			if result.StopReason != llm.StopToolUse {
				break
			}
			if step == r.maxSteps-1 {
				r.logger.Info("step budget reached, ending turn",
					"message_id", messageID,
					"steps", r.maxSteps)
			}
		}

		if toolCalls == 0 {
			// Tool choice is forced, so this indicates provider drift rather
			// than a normal response. Surface it but complete the turn.
			r.logger.Warn("turn produced no tool calls", "message_id", messageID)
		}

		if !send(wire.Event{Type: wire.EventMessageComplete, MessageID: messageID}, nil) {
			return
		}
		send(wire.Event{Type: wire.EventTurnComplete, MessageID: messageID}, nil)
	}
}

// runStep streams one model step, translating model events into protocol
// events as they arrive. It returns the accumulated step result, or ok=false
// when the consumer stopped or a failure was yielded.
func (r *Runner) runStep(
	ctx context.Context,
	yield func(wire.Event, error) bool,
	messageID string,
	req llm.Request,
) (*llm.StepResult, bool) {
	// Content block index to protocol part ID. Tool blocks reuse the
	// provider's invocation ID so history replay pairs calls with results.
	partIDs := make(map[int]string)
	var result *llm.StepResult

	for ev, err := range r.client.Stream(ctx, req) {
		if err != nil {
			yield(wire.Event{}, Classify(err))
			return nil, false
		}

		switch ev.Kind {
		case llm.EventTextDelta:
			id, ok := partIDs[ev.Index]
			if !ok {
				id = uuid.NewString()
				partIDs[ev.Index] = id
			}
			if !yield(wire.Event{
				Type:      wire.EventTextDelta,
				MessageID: messageID,
				PartID:    id,
				Text:      ev.Text,
			}, nil) {
				return nil, false
			}

		case llm.EventToolUseStart:
			partIDs[ev.Index] = ev.ToolID
			if !yield(wire.Event{
				Type:      wire.EventToolCallStart,
				MessageID: messageID,
				PartID:    ev.ToolID,
				ToolName:  ev.ToolName,
			}, nil) {
				return nil, false
			}

		case llm.EventToolInputDelta:
			if !yield(wire.Event{
				Type:       wire.EventToolCallDelta,
				MessageID:  messageID,
				PartID:     partIDs[ev.Index],
				InputDelta: ev.PartialJSON,
			}, nil) {
				return nil, false
			}

		case llm.EventStepDone:
			result = ev.Step
		}
	}

	if result == nil {
		yield(wire.Event{}, Classify(fmt.Errorf("model stream ended without a step result")))
		return nil, false
	}
	return result, true
}

// dispatchStep runs every tool invocation of a completed model step and
// yields its terminal event. Validation and handler failures become
// tool-call-error events and error results fed back to the model; an
// unknown tool name is a configuration defect and aborts the turn.
func (r *Runner) dispatchStep(
	ctx context.Context,
	yield func(wire.Event, error) bool,
	messageID string,
	step *llm.StepResult,
) (llm.Step, bool) {
	out := llm.Step{Assistant: step.Blocks}

	for _, b := range step.Blocks {
		if b.Kind != llm.BlockToolUse {
			continue
		}

		res, err := r.registry.Dispatch(ctx, catalog.Name(b.ToolName), b.Input)
		if err != nil {
			r.logger.Error("tool dispatch failed",
				"tool", b.ToolName,
				"tool_id", b.ToolID,
				"error", err)
			yield(wire.Event{}, Classify(err))
			return llm.Step{}, false
		}

		switch res.State {
		case dispatch.StateOutputAvailable:
			output, err := json.Marshal(res.Output)
			if err != nil {
				yield(wire.Event{}, Classify(fmt.Errorf("encoding %s output: %w", b.ToolName, err)))
				return llm.Step{}, false
			}
			if !yield(wire.Event{
				Type:      wire.EventToolCallComplete,
				MessageID: messageID,
				PartID:    b.ToolID,
				ToolName:  b.ToolName,
				Input:     b.Input,
				Output:    output,
			}, nil) {
				return llm.Step{}, false
			}
			out.Results = append(out.Results, llm.ToolResult{
				ToolID:  b.ToolID,
				Content: output,
			})

		case dispatch.StateOutputError:
			if !yield(wire.Event{
				Type:      wire.EventToolCallError,
				MessageID: messageID,
				PartID:    b.ToolID,
				ToolName:  b.ToolName,
				Input:     b.Input,
				ErrorText: res.ErrorText,
			}, nil) {
				return llm.Step{}, false
			}
			out.Results = append(out.Results, llm.ToolResult{
				ToolID:  b.ToolID,
				Content: json.RawMessage(res.ErrorText),
				IsError: true,
			})
		}
	}

	return out, true
}

func (r *Runner) toolDefinitions() []llm.ToolDefinition {
	defs := r.registry.Definitions()
	out := make([]llm.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, llm.ToolDefinition{
			Name:        string(d.Name),
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return out
}
