// Package syncer keeps the local store and the remote row store in step.
//
// The local copy is authoritative for rendering. Every save writes locally first and then
// mirrors the change to the remote in a background write the engine owns; remote failures
// are classified and logged, never returned to the caller and never rolled back locally.
// A schema-mismatch failure disables remote sync for the rest of the process.
package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"clementus360/mindset/config"
	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/sirupsen/logrus"
)

var (
	ErrOffline        = errors.New("this action needs a connection")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrRemoteDisabled = errors.New("remote sync is disabled for this session")
	ErrDayLocked      = errors.New("plan day is locked")
	ErrNotFound       = errors.New("not found")
	ErrInvalid        = errors.New("invalid input")
)

// Local storage keys.
const (
	KeyTasks          = "tasks"
	KeyPlan           = "plan"
	KeyBeliefs        = "beliefs"
	KeyGratitude      = "gratitude"
	KeyChatHistory    = "chat_history"
	KeyActivityLogs   = "activity_logs"
	KeyProfile        = "profile"
	KeyLastReset      = "last_reset_date"
	KeyGoalPlans      = "goal_plans"
	KeySupportTickets = "support_tickets"
	KeyLanguage       = "language"
	KeyOnboardingSeen = "onboarding_seen"
	KeyActiveTab      = "active_tab"
	KeyAuthSession    = "auth_session"
)

// StorageKeys lists every key the app writes.
var StorageKeys = []string{
	KeyTasks, KeyPlan, KeyBeliefs, KeyGratitude, KeyChatHistory, KeyActivityLogs,
	KeyProfile, KeyLastReset, KeyGoalPlans, KeySupportTickets, KeyLanguage,
	KeyOnboardingSeen, KeyActiveTab, KeyAuthSession,
}

// KV is the durable local key-value store. *localstore.KV implements it.
type KV interface {
	Get(key string, out any) (bool, error)
	Set(key string, v any) error
	Delete(key string) error
	Keys() ([]string, error)
}

// Remote is the user-scoped row store. *supabase.Tables implements it.
type Remote interface {
	Upsert(ctx context.Context, table string, rows any, onConflict string) error
	Insert(ctx context.Context, table string, rows any) error
	Select(ctx context.Context, table string, eq map[string]string, out any) error
	Update(ctx context.Context, table string, values any, eq map[string]string) error
	Delete(ctx context.Context, table string, eq map[string]string) error
}

// Identity reports the signed-in user. An empty id means nobody is signed in.
type Identity interface {
	CurrentUserID() string
}

type Option func(*Engine)

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeout bounds each background remote call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithAuthFailureHandler is called when a remote call is rejected because the session is
// no longer valid.
func WithAuthFailureHandler(fn func()) Option {
	return func(e *Engine) { e.onAuthFailure = fn }
}

// Engine is the offline-first sync engine. Construct one per process.
type Engine struct {
	kv            KV
	remote        Remote
	identity      Identity
	log           logrus.FieldLogger
	now           func() time.Time
	timeout       time.Duration
	onAuthFailure func()

	// mu serialises read-modify-write of local lists.
	mu sync.Mutex

	online   atomic.Bool
	mismatch atomic.Bool
	bg       sync.WaitGroup

	profile *Subject[types.Profile]
}

// New builds an engine. remote may be nil when no backend is configured; the engine then
// runs purely local.
func New(kv KV, remote Remote, identity Identity, opts ...Option) *Engine {
	e := &Engine{
		kv:       kv,
		remote:   remote,
		identity: identity,
		log:      config.Logger,
		now:      time.Now,
		timeout:  15 * time.Second,
		profile:  &Subject[types.Profile]{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "sync")
	e.online.Store(true)
	return e
}

// RemoteConfigured reports whether a backend was supplied.
func (e *Engine) RemoteConfigured() bool {
	return e.remote != nil
}

// RemoteDisabled reports whether a schema mismatch switched remote sync off.
func (e *Engine) RemoteDisabled() bool {
	return e.mismatch.Load()
}

func (e *Engine) Online() bool {
	return e.online.Load()
}

// SetOnline records connectivity. Coming back online pushes every local kind in the
// background.
func (e *Engine) SetOnline(online bool) {
	was := e.online.Swap(online)
	if online && !was {
		e.log.Info("Back online, syncing local data")
		e.bg.Add(1)
		go func() {
			defer e.bg.Done()
			e.SyncAll(context.Background())
		}()
	}
}

// Flush waits for every background remote write started so far.
func (e *Engine) Flush() {
	e.bg.Wait()
}

func (e *Engine) userID() string {
	if e.identity == nil {
		return ""
	}
	return e.identity.CurrentUserID()
}

// remoteReady reports whether a remote call may be made right now.
func (e *Engine) remoteReady() bool {
	return e.remote != nil && e.online.Load() && !e.mismatch.Load() && e.userID() != ""
}

// requireRemote is remoteReady with a reason, for actions that only make sense online.
func (e *Engine) requireRemote() (string, error) {
	switch {
	case e.remote == nil || !e.online.Load():
		return "", ErrOffline
	case e.mismatch.Load():
		return "", ErrRemoteDisabled
	}
	uid := e.userID()
	if uid == "" {
		return "", ErrNotSignedIn
	}
	return uid, nil
}

// push runs a remote write in the background. The write is skipped when the remote is not
// ready at issue time or became unusable before it ran.
func (e *Engine) push(table, op string, write func(ctx context.Context, r Remote, userID string) error) {
	if !e.remoteReady() {
		return
	}
	uid := e.userID()

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		if e.mismatch.Load() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		_ = e.observe(table, op, write(ctx, e.remote, uid))
	}()
}

// fetch reads the user's rows from table. Failures are observed and reported as a miss.
func (e *Engine) fetch(ctx context.Context, table string, eq map[string]string, out any) bool {
	if !e.remoteReady() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.observe(table, "select", e.remote.Select(ctx, table, eq, out)) == nil
}

// observe logs a remote failure according to its class and flips the mismatch flag.
func (e *Engine) observe(table, op string, err error) error {
	if err == nil {
		return nil
	}
	log := e.log.WithFields(logrus.Fields{"table": table, "op": op})

	switch supabase.Classify(err) {
	case supabase.ClassSchemaMismatch:
		if e.mismatch.CompareAndSwap(false, true) {
			log.Warn("Remote schema mismatch, remote sync disabled for this session: ", err)
		}
	case supabase.ClassTransient:
		log.Warn("Remote write failed, will retry on the next change: ", err)
	case supabase.ClassAuth:
		log.Warn("Remote rejected the session: ", err)
		if e.onAuthFailure != nil {
			e.onAuthFailure()
		}
	default:
		log.Error("Remote call failed: ", err)
	}
	return err
}

// read loads key into out. Decode and store failures are logged and reported as a miss.
func (e *Engine) read(key string, out any) bool {
	found, err := e.kv.Get(key, out)
	if err != nil {
		e.log.WithField("key", key).Warn("Failed to read local data: ", err)
		return false
	}
	return found
}

func (e *Engine) write(key string, v any) error {
	if err := e.kv.Set(key, v); err != nil {
		e.log.WithField("key", key).Error("Failed to write local data: ", err)
		return err
	}
	return nil
}

// Purge deletes every local key. It runs on sign-out so the next user starts clean.
func (e *Engine) Purge() error {
	keys := append([]string(nil), StorageKeys...)
	stored, err := e.kv.Keys()
	if err != nil {
		e.log.Warn("Failed to list local keys: ", err)
	}
	keys = append(keys, stored...)

	var errs []error
	for _, k := range keys {
		if err := e.kv.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		e.log.Error("Failed to purge local data: ", err)
		return err
	}
	e.log.Info("Local data purged")
	return nil
}

// Now is the engine's clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) today() string {
	return types.LocalDate(e.now())
}

func byUser(uid string) map[string]string {
	return map[string]string{"user_id": uid}
}
