// Package llm holds the Anthropic-backed implementations of the pipeline's
// Interpreter and Narrator interfaces, plus deterministic offline stand-ins
// for playing without network access.
package llm

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrMalformedReply marks a model response the adapters could not map onto
// the pipeline's vocabulary: no tool call, an unknown tool, undecodable tool
// input, or empty narration.
var ErrMalformedReply = errors.New("llm: malformed model reply")

// DefaultModel balances latency and cost for one-tool-call interpretation
// and two-sentence narration.
const DefaultModel = "claude-3-5-haiku-20241022"

// Config selects the API credentials and model for both adapters.
type Config struct {
	// APIKey authenticates against the Anthropic API.
	APIKey string
	// Model overrides DefaultModel when set.
	Model string
	// BaseURL overrides the API endpoint; tests point it at a local server.
	BaseURL string
}

// Client bundles the shared API client and model selection used by the
// interpreter and narrator adapters.
type Client struct {
	api   anthropic.Client
	model anthropic.Model
}

// NewClient builds the shared Anthropic client.
func NewClient(cfg Config, opts ...option.RequestOption) *Client {
	ro := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(cfg.BaseURL))
	}
	ro = append(ro, opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   anthropic.NewClient(ro...),
		model: anthropic.Model(model),
	}
}
