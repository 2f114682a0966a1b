package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clementus360/mindset/config"
	"clementus360/mindset/types"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTextModel = "gemini-2.0-flash"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultVoice     = "Kore"
)

var (
	ErrNotConfigured = errors.New("GEMINI_API_KEY not set")
	ErrEmptyResponse = errors.New("model returned no content")
)

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, truncate(e.Body, 200))
}

type Options struct {
	BaseURL   string
	APIKey    string
	TextModel string
	TTSModel  string
	Voice     string
	Timeout   time.Duration
}

// Client talks to the Gemini generateContent endpoint for text and speech.
type Client struct {
	http      *resty.Client
	apiKey    string
	textModel string
	ttsModel  string
	voice     string
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TextModel == "" {
		opts.TextModel = DefaultTextModel
	}
	if opts.TTSModel == "" {
		opts.TTSModel = DefaultTTSModel
	}
	if opts.Voice == "" {
		opts.Voice = DefaultVoice
	}
	if opts.Timeout <= 0 {
		// Add timeout to prevent hanging
		opts.Timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:      httpClient,
		apiKey:    opts.APIKey,
		textModel: opts.TextModel,
		ttsModel:  opts.TTSModel,
		voice:     opts.Voice,
	}
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content       `json:"systemInstruction,omitempty"`
	Contents          []content      `json:"contents"`
	GenerationConfig  map[string]any `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Complete asks the text model for a reply to input, framed by system and preceded by
// the recent conversation history.
func (c *Client) Complete(ctx context.Context, system string, history []types.ChatMessage, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("empty input")
	}

	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Role == types.RoleModel {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: input}}})

	req := generateRequest{
		Contents: contents,
		GenerationConfig: map[string]any{
			"temperature":     0.7,
			"maxOutputTokens": 1000,
			"topP":            0.9,
		},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	res, err := c.generate(ctx, c.textModel, req)
	if err != nil {
		return "", err
	}

	text, err := extractText(res)
	if err != nil {
		config.Logger.Warn("Failed to extract text from response: ", err)
		return "", err
	}
	return text, nil
}

// Synthesize turns text into speech. The result is base64 raw PCM (16-bit, mono,
// 24 kHz); the format is fixed by the model and not described in the response.
func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text")
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]string{"voiceName": c.voice},
				},
			},
		},
	}

	res, err := c.generate(ctx, c.ttsModel, req)
	if err != nil {
		return "", err
	}
	for _, cand := range res.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data, nil
			}
		}
	}
	return "", ErrEmptyResponse
}

func (c *Client) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&out).
		Post("/models/" + model + ":generateContent")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return &out, nil
}

// extractText joins the text parts of the first candidate.
func extractText(res *generateResponse) (string, error) {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: blocked (%s)", ErrEmptyResponse, res.PromptFeedback.BlockReason)
	}
	if len(res.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned from Gemini", ErrEmptyResponse)
	}

	var b strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text in candidate", ErrEmptyResponse)
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
