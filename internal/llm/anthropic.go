package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cardflow-sh/cardflow/internal/log"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// AnthropicClient implements Client on the Anthropic Messages API.
// The API key is read from ANTHROPIC_API_KEY by the SDK.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	logger    log.Logger
}

// NewAnthropic creates an Anthropic-backed model client.
func NewAnthropic(model string, maxTokens int, logger log.Logger, opts ...option.RequestOption) *AnthropicClient {
	client := anthropic.NewClient(opts...)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		client:    &client,
		model:     model,
		maxTokens: int64(maxTokens),
		logger:    logger,
	}
}

// Stream runs one model step. Tool choice is "any": the model must invoke
// at least one tool; plain-text-only responses are disallowed.
func (c *AnthropicClient) Stream(ctx context.Context, req Request) iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		params, err := c.buildParams(req)
		if err != nil {
			yield(StreamEvent{}, err)
			return
		}

		stream := c.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		message := anthropic.Message{}
		for stream.Next() {
			event := stream.Current()
			if err := message.Accumulate(event); err != nil {
				yield(StreamEvent{}, &ProviderError{Message: fmt.Sprintf("stream accumulate: %v", err)})
				return
			}

			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				if blk, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
					if !yield(StreamEvent{
						Kind:     EventToolUseStart,
						Index:    int(ev.Index),
						ToolID:   blk.ID,
						ToolName: blk.Name,
					}, nil) {
						return
					}
				}

			case anthropic.ContentBlockDeltaEvent:
				switch d := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if !yield(StreamEvent{Kind: EventTextDelta, Index: int(ev.Index), Text: d.Text}, nil) {
						return
					}
				case anthropic.InputJSONDelta:
					if !yield(StreamEvent{Kind: EventToolInputDelta, Index: int(ev.Index), PartialJSON: d.PartialJSON}, nil) {
						return
					}
				}

			case anthropic.ContentBlockStopEvent:
				if !yield(StreamEvent{Kind: EventBlockStop, Index: int(ev.Index)}, nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			yield(StreamEvent{}, classifySDKError(err))
			return
		}

		step := &StepResult{StopReason: string(message.StopReason)}
		for _, block := range message.Content {
			switch v := block.AsAny().(type) {
			case anthropic.TextBlock:
				step.Blocks = append(step.Blocks, Block{Kind: BlockText, Text: v.Text})
			case anthropic.ToolUseBlock:
				inputJSON, err := json.Marshal(v.Input)
				if err != nil {
					yield(StreamEvent{}, fmt.Errorf("marshaling tool input for %s: %w", v.Name, err))
					return
				}
				step.Blocks = append(step.Blocks, Block{
					Kind:     BlockToolUse,
					ToolID:   v.ID,
					ToolName: v.Name,
					Input:    inputJSON,
				})
			}
		}

		c.logger.Debug("model step complete",
			"stop_reason", step.StopReason,
			"blocks", len(step.Blocks),
			"input_tokens", message.Usage.InputTokens,
			"output_tokens", message.Usage.OutputTokens)

		yield(StreamEvent{Kind: EventStepDone, Step: step}, nil)
	}
}

func (c *AnthropicClient) buildParams(req Request) (anthropic.MessageNewParams, error) {
	messages, err := convertHistory(req.History)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	for _, step := range req.Steps {
		var assistant []anthropic.ContentBlockParamUnion
		for _, b := range step.Assistant {
			switch b.Kind {
			case BlockText:
				if b.Text != "" {
					assistant = append(assistant, anthropic.NewTextBlock(b.Text))
				}
			case BlockToolUse:
				var input any
				if len(b.Input) > 0 {
					if err := json.Unmarshal(b.Input, &input); err != nil {
						input = map[string]any{}
					}
				} else {
					input = map[string]any{}
				}
				assistant = append(assistant, anthropic.NewToolUseBlock(b.ToolID, input, b.ToolName))
			}
		}
		if len(assistant) > 0 {
			messages = append(messages, anthropic.NewAssistantMessage(assistant...))
		}

		var results []anthropic.ContentBlockParamUnion
		for _, r := range step.Results {
			results = append(results, anthropic.NewToolResultBlock(r.ToolID, string(r.Content), r.IsError))
		}
		if len(results) > 0 {
			messages = append(messages, anthropic.NewUserMessage(results...))
		}
	}

	tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
	for _, t := range req.Tools {
		tp, err := toolParam(t)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		tools = append(tools, tp)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
		Tools:     tools,
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params, nil
}

// convertHistory maps the wire conversation onto Anthropic message params.
// Text-like file content travels as text parts (with the attribution marker
// already applied by ingest), so only images and PDFs appear as file parts.
func convertHistory(history []wire.Message) ([]anthropic.MessageParam, error) {
	var messages []anthropic.MessageParam

	for _, m := range history {
		switch m.Role {
		case wire.RoleUser:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range m.Parts {
				switch p.Type {
				case wire.PartTypeText:
					if p.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(p.Text))
					}
				case wire.PartTypeFile:
					if p.MediaType == "application/pdf" {
						blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
							Data: p.Data,
						}))
					} else {
						blocks = append(blocks, anthropic.NewImageBlockBase64(p.MediaType, p.Data))
					}
				}
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewUserMessage(blocks...))
			}

		case wire.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			var results []anthropic.ContentBlockParamUnion
			for _, p := range m.Parts {
				switch p.Type {
				case wire.PartTypeText:
					if p.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(p.Text))
					}
				case wire.PartTypeTool:
					// Only terminal states appear in history. Errored parts
					// are replayed as an error result so the model sees the
					// same conversation the user saw.
					var input any
					if len(p.Input) > 0 {
						if err := json.Unmarshal(p.Input, &input); err != nil {
							input = map[string]any{}
						}
					} else {
						input = map[string]any{}
					}
					blocks = append(blocks, anthropic.NewToolUseBlock(p.ID, input, p.ToolName))
					switch p.State {
					case wire.ToolOutputAvailable:
						results = append(results, anthropic.NewToolResultBlock(p.ID, string(p.Output), false))
					case wire.ToolOutputError:
						results = append(results, anthropic.NewToolResultBlock(p.ID, p.ErrorText, true))
					}
				}
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
			if len(results) > 0 {
				messages = append(messages, anthropic.NewUserMessage(results...))
			}

		default:
			return nil, fmt.Errorf("history message %s has unknown role %q", m.ID, m.Role)
		}
	}

	return messages, nil
}

// toolParam converts a catalog schema into the SDK's input schema shape by
// a JSON round trip, keeping the declarative literal as the single source
// of truth.
func toolParam(t ToolDefinition) (anthropic.ToolUnionParam, error) {
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return anthropic.ToolUnionParam{}, fmt.Errorf("marshaling schema for %s: %w", t.Name, err)
	}
	var schema struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return anthropic.ToolUnionParam{}, fmt.Errorf("decoding schema for %s: %w", t.Name, err)
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema.Properties,
				Required:   schema.Required,
			},
		},
	}, nil
}

// classifySDKError converts an SDK failure into a ProviderError, preserving
// the HTTP status when the SDK exposes one.
func classifySDKError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &ProviderError{
			StatusCode: apierr.StatusCode,
			Message:    strings.TrimSpace(apierr.Error()),
		}
	}
	return &ProviderError{Message: err.Error()}
}
