package llm

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/room"
)

//go:embed prompts/interpreter_system.md
var interpreterSystemPrompt string

// unrecognizedToolName is the extra tool the model calls when the input maps
// to no catalog action.
const unrecognizedToolName = "unrecognized"

const interpreterMaxTokens = 1024

// Interpreter maps free player text onto the action catalog with one forced
// tool call: one tool per catalog kind plus the unrecognized tool.
type Interpreter struct {
	client *Client
	logger *zap.Logger
}

// NewInterpreter builds the interpreter adapter over the shared client.
func NewInterpreter(c *Client, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{client: c, logger: logger}
}

// Interpret asks the model to pick exactly one tool for the input.
// Identifier hygiene is enforced downstream: whatever ids come back pass to
// the state machine, which rejects anything outside the room.
func (i *Interpreter) Interpret(ctx context.Context, raw string, v room.StateView) (pipeline.Interpretation, error) {
	msg, err := i.client.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       i.client.model,
		MaxTokens:   interpreterMaxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: interpreterSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(interpreterPayload(raw, v))),
		},
		Tools: buildTools(v),
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{
				DisableParallelToolUse: anthropic.Bool(true),
			},
		},
	})
	if err != nil {
		return pipeline.Interpretation{}, fmt.Errorf("llm: interpreter call: %w", err)
	}

	in, err := mapToolUse(msg)
	if err != nil {
		i.logger.Warn("interpreter reply rejected", zap.Error(err))
		return pipeline.Interpretation{}, err
	}
	i.logger.Debug("input interpreted",
		zap.String("interpretation", string(in.Kind)),
		zap.String("kind", string(in.Action.Kind)),
		zap.Bool("compound", in.Compound))
	return in, nil
}

func interpreterPayload(raw string, v room.StateView) string {
	view, _ := json.Marshal(wireViewFrom(v))
	return fmt.Sprintf("Player input: %s\n\nRoom state:\n%s", raw, view)
}

// buildTools declares one tool per catalog kind plus the unrecognized tool.
// Identifier vocabularies ride in the parameter descriptions so the model
// quotes instead of inventing.
func buildTools(v room.StateView) []anthropic.ToolUnionParam {
	ids := visibleIDs(v)
	carried := carriedIDs(v)

	tools := make([]anthropic.ToolUnionParam, 0, len(action.Catalog())+1)
	for _, spec := range action.Catalog() {
		props := map[string]any{
			"and_more": map[string]any{
				"type":        "boolean",
				"description": "True when the player asked for more than this one action.",
			},
		}
		if spec.NeedsTarget || spec.TargetOptional {
			desc := "Identifier of the entity to act on. Known identifiers: " + ids + "."
			if spec.TargetOptional {
				desc += " Omit to address the whole room."
			} else {
				desc += " Omit only when the player did not say which."
			}
			props["target"] = map[string]any{"type": "string", "description": desc}
		}
		if spec.TakesItem {
			props["item"] = map[string]any{
				"type": "string",
				"description": "Identifier of the carried item to use. Carried now: " + carried +
					". Omit only when the player did not say which.",
			}
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        string(spec.Kind),
			Description: anthropic.String(spec.Brief),
			InputSchema: anthropic.ToolInputSchemaParam{Properties: props},
		}})
	}

	tools = append(tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
		Name:        unrecognizedToolName,
		Description: anthropic.String("The input maps to no available action."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"reason": map[string]any{
					"type": "string",
					"enum": []string{"gibberish", "impossible"},
					"description": "gibberish: not readable as an action. " +
						"impossible: understood, but outside what this room supports.",
				},
			},
			Required: []string{"reason"},
		},
	}})
	return tools
}

// mapToolUse maps the first tool_use block onto an Interpretation.
func mapToolUse(msg *anthropic.Message) (pipeline.Interpretation, error) {
	for _, block := range msg.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			return mapTool(tu)
		}
	}
	return pipeline.Interpretation{}, fmt.Errorf("%w: no tool call in reply", ErrMalformedReply)
}

func mapTool(tu anthropic.ToolUseBlock) (pipeline.Interpretation, error) {
	rawInput := []byte(tu.JSON.Input.Raw())

	if tu.Name == unrecognizedToolName {
		var in struct {
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(rawInput, &in); err != nil {
			return pipeline.Interpretation{}, fmt.Errorf("%w: unrecognized input: %v", ErrMalformedReply, err)
		}
		return pipeline.Interpretation{
			Kind:       pipeline.InterpretedUnrecognized,
			Impossible: in.Reason == "impossible",
		}, nil
	}

	kind := action.Kind(tu.Name)
	spec, ok := action.SpecFor(kind)
	if !ok {
		return pipeline.Interpretation{}, fmt.Errorf("%w: unknown tool %q", ErrMalformedReply, tu.Name)
	}

	var in struct {
		Target  string `json:"target"`
		Item    string `json:"item"`
		AndMore bool   `json:"and_more"`
	}
	if err := json.Unmarshal(rawInput, &in); err != nil {
		return pipeline.Interpretation{}, fmt.Errorf("%w: tool %q input: %v", ErrMalformedReply, tu.Name, err)
	}
	in.Target = strings.TrimSpace(in.Target)
	in.Item = strings.TrimSpace(in.Item)

	if spec.NeedsTarget && in.Target == "" {
		return pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: kind}, nil
	}
	if spec.TakesItem && in.Item == "" {
		return pipeline.Interpretation{Kind: pipeline.InterpretedPartial, PartialKind: kind}, nil
	}
	return pipeline.Interpretation{
		Kind:     pipeline.InterpretedAction,
		Action:   action.Action{Kind: kind, Target: in.Target, Item: in.Item},
		Compound: in.AndMore,
	}, nil
}
