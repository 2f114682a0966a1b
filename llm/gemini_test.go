package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clementus360/mindset/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, APIKey: "test-key"})
}

func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestCompleteSendsHistoryAndSystem(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultTextModel+":generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSONResponse(w, map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": " Hello there. "}}},
			}},
		})
	})

	history := []types.ChatMessage{
		{Role: types.RoleUser, Text: "hi"},
		{Role: types.RoleModel, Text: "hey"},
	}
	text, err := client.Complete(context.Background(), "be kind", history, "how are you")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be kind", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "how are you", got.Contents[2].Parts[0].Text)
}

func TestCompleteEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, map[string]any{"candidates": []any{}})
	})

	_, err := client.Complete(context.Background(), "", nil, "hello")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	})

	_, err := client.Complete(context.Background(), "", nil, "hello")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestSynthesizeReturnsInlineAudio(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultTTSModel+":generateContent", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSONResponse(w, map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{
					"inlineData": map[string]any{"mimeType": "audio/L16;codec=pcm;rate=24000", "data": "AAEC"},
				}}},
			}},
		})
	})

	data, err := client.Synthesize(context.Background(), "breathe in")
	require.NoError(t, err)
	assert.Equal(t, "AAEC", data)
	assert.Equal(t, []any{"AUDIO"}, got.GenerationConfig["responseModalities"])
}

func TestSynthesizeWithoutAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": "no"}}}}},
		})
	})

	_, err := client.Synthesize(context.Background(), "breathe in")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestMissingAPIKey(t *testing.T) {
	client := New(Options{})
	_, err := client.Synthesize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
