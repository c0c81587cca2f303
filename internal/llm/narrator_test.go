package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
)

func narrationServer(t *testing.T, reply string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			require.NoError(t, json.Unmarshal(body, capture))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"msg_01","type":"message","role":"assistant",`+
			`"model":"claude-3-5-haiku-20241022","content":[{"type":"text","text":%q}],`+
			`"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`, reply)
	}))
}

func TestNarrator_RoundTrip(t *testing.T) {
	var gotBody map[string]any
	srv := narrationServer(t, "  You scoop up the brass key.  ", &gotBody)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, option.WithMaxRetries(0))
	n := NewNarrator(c, zaptest.NewLogger(t))

	text, err := n.Narrate(context.Background(), pipeline.NarrationRequest{
		Style: pipeline.StyleTurn,
		Outcome: action.Outcome{
			Action:  action.Action{Kind: action.KindTake, Target: "brass_key"},
			Success: true,
			Message: "You pick up the brass key.",
			Facts:   []string{"The brass key is now in your inventory."},
		},
		View: testView(),
	})
	require.NoError(t, err)
	assert.Equal(t, "You scoop up the brass key.", text, "reply is trimmed")

	assert.EqualValues(t, 0.7, gotBody["temperature"])
	assert.NotEmpty(t, gotBody["system"])

	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	payloadText := msgs[0].(map[string]any)["content"].([]any)[0].(map[string]any)["text"].(string)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(payloadText), &payload))
	assert.Equal(t, "turn", payload["style"])
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "You pick up the brass key.", payload["message"])
	assert.Equal(t, []any{"The brass key is now in your inventory."}, payload["facts"])
	roomPayload := payload["room"].(map[string]any)
	assert.Equal(t, "The Cell", roomPayload["title"])
}

func TestNarrator_EmptyReplyIsMalformed(t *testing.T) {
	srv := narrationServer(t, "   ", nil)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, option.WithMaxRetries(0))
	n := NewNarrator(c, zaptest.NewLogger(t))

	_, err := n.Narrate(context.Background(), pipeline.NarrationRequest{
		Style:   pipeline.StyleTurn,
		Outcome: action.Outcome{Message: "Nothing happens."},
		View:    testView(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedReply))
}

func TestNarrator_CompoundRidesAsMultipleRequested(t *testing.T) {
	var gotBody map[string]any
	srv := narrationServer(t, "You pocket the key. One thing at a time.", &gotBody)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, option.WithMaxRetries(0))
	n := NewNarrator(c, zaptest.NewLogger(t))

	_, err := n.Narrate(context.Background(), pipeline.NarrationRequest{
		Style:    pipeline.StyleTurn,
		Outcome:  action.Outcome{Success: true, Message: "You pick up the brass key."},
		View:     testView(),
		Compound: true,
	})
	require.NoError(t, err)

	payloadText := gotBody["messages"].([]any)[0].(map[string]any)["content"].([]any)[0].(map[string]any)["text"].(string)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(payloadText), &payload))
	assert.Equal(t, true, payload["multiple_requested"])
}
