package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// fakePostgrest serves /rest/v1/* and records every request.
func fakePostgrest(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Tables, *[]recordedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	tables, err := NewTables(srv.URL, "anon-key")
	require.NoError(t, err)
	return tables, &reqs
}

func TestTablesUpsertSendsTokenAndConflict(t *testing.T) {
	tables, reqs := fakePostgrest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	require.NoError(t, tables.SetAccessToken("user-token"))

	rows := []map[string]any{{"id": "t1", "user_id": "u1", "text": "x"}}
	require.NoError(t, tables.Upsert(context.Background(), TableTasks, rows, "id"))

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/rest/v1/tasks", got.Path)
	assert.Contains(t, got.Query, "on_conflict=id")
	assert.Equal(t, "Bearer user-token", got.Auth)
	assert.JSONEq(t, `[{"id":"t1","user_id":"u1","text":"x"}]`, got.Body)
}

func TestTablesSelectFiltersAndDecodes(t *testing.T) {
	tables, reqs := fakePostgrest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{"date": "2024-05-01", "count": 3}})
	})

	var rows []struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	err := tables.Select(context.Background(), TableActivityLogs, map[string]string{"user_id": "u1", "date": "2024-05-01"}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Count)

	q := (*reqs)[0].Query
	assert.Contains(t, q, "user_id=eq.u1")
	assert.Contains(t, q, "date=eq.2024-05-01")
}

func TestTablesClassifiesSchemaErrors(t *testing.T) {
	tables, _ := fakePostgrest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"PGRST204","message":"Could not find the 'note' column of 'tasks' in the schema cache"}`))
	})

	err := tables.Upsert(context.Background(), TableTasks, []map[string]any{{"id": "t1"}}, "id")
	require.Error(t, err)
	assert.True(t, IsSchemaMismatch(err))
}

func TestTablesRefusesUnfilteredDelete(t *testing.T) {
	tables, reqs := fakePostgrest(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Error(t, tables.Delete(context.Background(), TableChatHistory, nil))
	assert.Empty(t, *reqs)
}

func TestTablesHonoursCancelledContext(t *testing.T) {
	tables, reqs := fakePostgrest(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tables.Insert(ctx, TableBeliefs, []map[string]any{{"id": "b1"}})
	assert.Equal(t, ClassTransient, Classify(err))
	assert.Empty(t, *reqs)
}
