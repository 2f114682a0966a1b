package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorClassifiesPostgrestCodes(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorClass
		code string
	}{
		{"(PGRST204) Could not find the 'note' column of 'tasks' in the schema cache", ClassSchemaMismatch, "PGRST204"},
		{"(42703) column tasks.ai_advice does not exist", ClassSchemaMismatch, "42703"},
		{"(PGRST301) JWT expired", ClassAuth, "PGRST301"},
		{"(XX000) internal error", ClassOther, "XX000"},
		{"(08006) connection failure", ClassTransient, "08006"},
	}
	for _, tc := range cases {
		err := wrapError("tasks", "upsert", errors.New(tc.msg))
		var re *RemoteError
		if assert.ErrorAs(t, err, &re, tc.msg) {
			assert.Equal(t, tc.want, re.Class, tc.msg)
			assert.Equal(t, tc.code, re.Code, tc.msg)
		}
		assert.Equal(t, tc.want, Classify(err), tc.msg)
	}
}

func TestClassifyNetworkAndContext(t *testing.T) {
	urlErr := &url.Error{Op: "Post", URL: "https://x", Err: errors.New("dial tcp: connection refused")}
	assert.Equal(t, ClassTransient, Classify(wrapError("plans", "upsert", urlErr)))
	assert.Equal(t, ClassTransient, Classify(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.Equal(t, ClassOther, Classify(errors.New("boom")))
	assert.Nil(t, wrapError("plans", "upsert", nil))
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, ClassSchemaMismatch, ClassifyStatus(400))
	assert.Equal(t, ClassAuth, ClassifyStatus(401))
	assert.Equal(t, ClassTransient, ClassifyStatus(503))
	assert.Equal(t, ClassTransient, ClassifyStatus(429))
	assert.Equal(t, ClassOther, ClassifyStatus(404))
}

func TestWrapErrorFallsBackToStatus(t *testing.T) {
	cases := []struct {
		msg    string
		status int
		want   ErrorClass
	}{
		{"(PGRST102) Empty or invalid json", 400, ClassSchemaMismatch},
		{"(PGRST100) failed to parse filter", 400, ClassSchemaMismatch},
		{"(PGRST301) JWT expired", 401, ClassAuth},
		{"(PGRST000) could not connect to the database", 503, ClassTransient},
		{"(23505) duplicate key value violates unique constraint", 409, ClassOther},
		{"response status code 400: bad request", 400, ClassSchemaMismatch},
		{"response status code 503: upstream unavailable", 503, ClassTransient},
		{"() bad request", 0, ClassOther},
	}
	for _, tc := range cases {
		err := wrapError("plans", "upsert", errors.New(tc.msg))
		var re *RemoteError
		if assert.ErrorAs(t, err, &re, tc.msg) {
			assert.Equal(t, tc.status, re.Status, tc.msg)
			assert.Equal(t, tc.want, re.Class, tc.msg)
		}
	}
}

func TestClassifyAuthServerStatus(t *testing.T) {
	assert.Equal(t, ClassTransient, Classify(fmt.Errorf("token refresh failed: %w", errors.New("response status code 502: bad gateway"))))
	assert.Equal(t, ClassAuth, Classify(errors.New("response status code 401: invalid JWT")))
}

func TestRemoteErrorMessage(t *testing.T) {
	err := &RemoteError{Class: ClassSchemaMismatch, Table: "tasks", Op: "upsert", Code: "PGRST204", Status: 400, Err: errors.New("no column")}
	assert.Equal(t, "[schema_mismatch] upsert tasks HTTP 400 (PGRST204): no column", err.Error())
	assert.True(t, IsSchemaMismatch(fmt.Errorf("sync: %w", err)))
}
