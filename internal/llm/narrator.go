package llm

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
)

//go:embed prompts/narrator_system.md
var narratorSystemPrompt string

const (
	narratorMaxTokens   = 256
	narratorTemperature = 0.7
)

// Narrator turns structured outcomes into short second-person prose. It
// holds no state; temperature keeps repeated actions from reading identically.
type Narrator struct {
	client *Client
	logger *zap.Logger
}

// NewNarrator builds the narrator adapter over the shared client.
func NewNarrator(c *Client, logger *zap.Logger) *Narrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{client: c, logger: logger}
}

// narrationPayload is the user-message JSON: the mechanical truth the prose
// must preserve, plus the post-turn view for atmosphere.
type narrationPayload struct {
	Style             string   `json:"style"`
	Success           bool     `json:"success"`
	Reason            string   `json:"reason,omitempty"`
	Message           string   `json:"message"`
	Facts             []string `json:"facts,omitempty"`
	Won               bool     `json:"won,omitempty"`
	MultipleRequested bool     `json:"multiple_requested,omitempty"`
	Room              wireView `json:"room"`
}

// Narrate renders one outcome as prose.
//
// Postcondition: the returned text is non-empty; an empty model reply is
// reported as ErrMalformedReply so the pipeline falls back to mechanical text.
func (n *Narrator) Narrate(ctx context.Context, req pipeline.NarrationRequest) (string, error) {
	payload, err := json.Marshal(narrationPayload{
		Style:             string(req.Style),
		Success:           req.Outcome.Success,
		Reason:            string(req.Outcome.Reason),
		Message:           req.Outcome.Message,
		Facts:             req.Outcome.Facts,
		Won:               req.Outcome.Won,
		MultipleRequested: req.Compound,
		Room:              wireViewFrom(req.View),
	})
	if err != nil {
		return "", fmt.Errorf("llm: narration payload: %w", err)
	}

	msg, err := n.client.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       n.client.model,
		MaxTokens:   narratorMaxTokens,
		Temperature: anthropic.Float(narratorTemperature),
		System:      []anthropic.TextBlockParam{{Text: narratorSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: narrator call: %w", err)
	}

	text := strings.TrimSpace(collectText(msg))
	if text == "" {
		n.logger.Warn("narrator returned no text", zap.String("style", string(req.Style)))
		return "", fmt.Errorf("%w: empty narration", ErrMalformedReply)
	}
	return text, nil
}

func collectText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}
