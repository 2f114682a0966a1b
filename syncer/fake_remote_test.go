package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"clementus360/mindset/localstore"
	"clementus360/mindset/supabase"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type call struct {
	Op    string
	Table string
}

// fakeRemote is an in-memory row store keyed by table.
type fakeRemote struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	calls  []call
	fail   map[string]error // op -> error returned on every call

	// columns lists the accepted columns of a table. Tables without an entry accept any.
	columns map[string]map[string]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tables:  map[string][]map[string]any{},
		fail:    map[string]error{},
		columns: map[string]map[string]bool{},
	}
}

// restrictColumns makes writes to table fail like PostgREST does for an unknown column.
func (f *fakeRemote) restrictColumns(table string, cols ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[string]bool, len(cols))
	for _, c := range cols {
		allowed[c] = true
	}
	f.columns[table] = allowed
}

func (f *fakeRemote) checkColumns(op, table string, rows []map[string]any) error {
	allowed, ok := f.columns[table]
	if !ok {
		return nil
	}
	for _, row := range rows {
		for col := range row {
			if !allowed[col] {
				return &supabase.RemoteError{
					Class:  supabase.ClassSchemaMismatch,
					Table:  table,
					Op:     op,
					Code:   "PGRST204",
					Status: 400,
					Err:    fmt.Errorf("could not find the '%s' column of '%s' in the schema cache", col, table),
				}
			}
		}
	}
	return nil
}

func (f *fakeRemote) failOp(op string, class supabase.ErrorClass) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = &supabase.RemoteError{Class: class, Op: op, Err: fmt.Errorf("armed %s failure", class)}
}

func (f *fakeRemote) record(op, table string) error {
	f.calls = append(f.calls, call{Op: op, Table: table})
	return f.fail[op]
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) rows(table string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.tables[table]...)
}

func toRows(v any) []map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	if strings.HasPrefix(string(raw), "[") {
		var rows []map[string]any
		_ = json.Unmarshal(raw, &rows)
		return rows
	}
	var row map[string]any
	_ = json.Unmarshal(raw, &row)
	return []map[string]any{row}
}

func matches(row map[string]any, eq map[string]string) bool {
	for k, v := range eq {
		if fmt.Sprint(row[k]) != v {
			return false
		}
	}
	return true
}

func (f *fakeRemote) Upsert(_ context.Context, table string, rows any, onConflict string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("upsert", table); err != nil {
		return err
	}
	incoming := toRows(rows)
	if err := f.checkColumns("upsert", table, incoming); err != nil {
		return err
	}
	keys := strings.Split(onConflict, ",")
	for _, row := range incoming {
		eq := map[string]string{}
		for _, k := range keys {
			eq[k] = fmt.Sprint(row[k])
		}
		replaced := false
		for i, existing := range f.tables[table] {
			if matches(existing, eq) {
				f.tables[table][i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			f.tables[table] = append(f.tables[table], row)
		}
	}
	return nil
}

func (f *fakeRemote) Insert(_ context.Context, table string, rows any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("insert", table); err != nil {
		return err
	}
	incoming := toRows(rows)
	if err := f.checkColumns("insert", table, incoming); err != nil {
		return err
	}
	f.tables[table] = append(f.tables[table], incoming...)
	return nil
}

func (f *fakeRemote) Select(_ context.Context, table string, eq map[string]string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("select", table); err != nil {
		return err
	}
	found := []map[string]any{}
	for _, row := range f.tables[table] {
		if matches(row, eq) {
			found = append(found, row)
		}
	}
	raw, _ := json.Marshal(found)
	return json.Unmarshal(raw, out)
}

func (f *fakeRemote) Update(_ context.Context, table string, values any, eq map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update", table); err != nil {
		return err
	}
	patch := toRows(values)[0]
	if err := f.checkColumns("update", table, []map[string]any{patch}); err != nil {
		return err
	}
	for _, row := range f.tables[table] {
		if matches(row, eq) {
			for k, v := range patch {
				row[k] = v
			}
		}
	}
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, table string, eq map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete", table); err != nil {
		return err
	}
	kept := f.tables[table][:0]
	for _, row := range f.tables[table] {
		if !matches(row, eq) {
			kept = append(kept, row)
		}
	}
	f.tables[table] = kept
	return nil
}

type userIdentity struct {
	mu  sync.Mutex
	uid string
}

func (u *userIdentity) CurrentUserID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uid
}

func (u *userIdentity) set(uid string) {
	u.mu.Lock()
	u.uid = uid
	u.mu.Unlock()
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	engine *Engine
	kv     *localstore.KV
	remote *fakeRemote
	user   *userIdentity
	clock  *testClock
}

// newHarness builds an engine over a real SQLite store and a fake remote, signed in as u1.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	db, err := localstore.Open(filepath.Join(t.TempDir(), "mindset.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, _ := test.NewNullLogger()
	h := &harness{
		kv:     db.KV(),
		remote: newFakeRemote(),
		user:   &userIdentity{uid: "u1"},
		clock:  &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)},
	}
	opts = append([]Option{WithLogger(log), WithClock(h.clock.now)}, opts...)
	h.engine = New(h.kv, h.remote, h.user, opts...)
	t.Cleanup(h.engine.Flush)
	return h
}
