package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"clementus360/mindset/app"
	"clementus360/mindset/audio"
	"clementus360/mindset/config"
	"clementus360/mindset/handlers"
	"clementus360/mindset/localstore"
	"clementus360/mindset/middleware"
	"clementus360/mindset/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedSpeech struct{}

func (cannedSpeech) Complete(ctx context.Context, system string, history []types.ChatMessage, input string) (string, error) {
	return "One small step at a time.", nil
}

func (cannedSpeech) Synthesize(ctx context.Context, text string) (string, error) {
	return base64.StdEncoding.EncodeToString(make([]byte, 480)), nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := localstore.Open(filepath.Join(t.TempDir(), "bridge.db"))
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	settings := &config.Settings{
		AudioSampleRate:       24000,
		AudioChannels:         1,
		RemoteTimeout:         time.Second,
		VisualizationDuration: time.Minute,
	}
	a := app.Compose(settings, db, app.Backend{}, cannedSpeech{}, audio.ClockOutput{}, log)

	mux := http.NewServeMux()
	RegisterAllRoutes(mux, handlers.New(a))
	srv := httptest.NewServer(middleware.Chain(middleware.RecoverMiddleware, middleware.CORS(""))(mux))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func TestTaskRoutes(t *testing.T) {
	srv := newServer(t)

	status, env := call(t, srv, http.MethodPost, "/tasks", map[string]string{"text": "Walk outside"})
	require.Equal(t, http.StatusCreated, status)
	var task types.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.NotEmpty(t, task.ID)

	status, env = call(t, srv, http.MethodPost, "/tasks/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.True(t, task.Completed)

	status, env = call(t, srv, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, status)
	var tasks []types.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks, len(types.DefaultTaskTexts)+1)

	status, env = call(t, srv, http.MethodDelete, "/tasks/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)

	status, _ = call(t, srv, http.MethodPost, "/tasks", map[string]string{"text": " "})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPlanRoutesEnforcePacing(t *testing.T) {
	srv := newServer(t)

	status, _ := call(t, srv, http.MethodPost, "/plan/2/complete", map[string]string{"answer": "too early"})
	assert.Equal(t, http.StatusConflict, status)

	status, env := call(t, srv, http.MethodPost, "/plan/1/complete", map[string]string{"answer": "I want to feel calm"})
	require.Equal(t, http.StatusOK, status)
	var day types.PlanDay
	require.NoError(t, json.Unmarshal(env.Data, &day))
	assert.True(t, day.Completed)
	assert.Equal(t, "One small step at a time.", day.AIFeedback)

	status, _ = call(t, srv, http.MethodPatch, "/plan/1", map[string]string{"answer": "edit"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, srv, http.MethodPost, "/plan/x/reopen", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChatRoute(t *testing.T) {
	srv := newServer(t)

	status, _ := call(t, srv, http.MethodPost, "/chat", types.ChatRequest{Message: "I feel stuck"})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, srv, http.MethodGet, "/chat/history", nil)
	require.Equal(t, http.StatusOK, status)
	var history []types.ChatMessage
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, types.RoleUser, history[0].Role)
	assert.Equal(t, types.RoleModel, history[1].Role)
}

func TestOnlineOnlyRoutesFailLocally(t *testing.T) {
	srv := newServer(t)

	status, _ := call(t, srv, http.MethodPost, "/feedback", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = call(t, srv, http.MethodPost, "/feedback", map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodPost, "/session/signin", types.Credentials{Email: "a@b.c", Password: "secret"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAudioRoutes(t *testing.T) {
	srv := newServer(t)

	status, _ := call(t, srv, http.MethodPost, "/audio/play", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, srv, http.MethodPost, "/audio/scripts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, srv, http.MethodPost, "/audio/scripts/anxiety", nil)
	require.Equal(t, http.StatusOK, status)

	res, err := srv.Client().Get(srv.URL + "/audio/chunks/0")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "audio/wav", res.Header.Get("Content-Type"))
	wav, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))

	status, env := call(t, srv, http.MethodPost, "/visualization/start", nil)
	require.Equal(t, http.StatusOK, status)
	var cd audio.CountdownStatus
	require.NoError(t, json.Unmarshal(env.Data, &cd))
	assert.True(t, cd.Active)
}

func TestPreflight(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/tasks", nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}
