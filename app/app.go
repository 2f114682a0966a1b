// Package app wires the local stores, the remote backend, the sync engine, the coach and
// the audio subsystem into one process-wide instance.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clementus360/mindset/audio"
	"clementus360/mindset/coach"
	"clementus360/mindset/config"
	"clementus360/mindset/llm"
	"clementus360/mindset/localstore"
	"clementus360/mindset/supabase"
	"clementus360/mindset/syncer"
	"clementus360/mindset/types"

	"github.com/sirupsen/logrus"
)

// Authenticator manages the signed-in session. *supabase.Auth implements it.
type Authenticator interface {
	SignUp(ctx context.Context, creds types.Credentials) (types.AuthSession, error)
	SignIn(ctx context.Context, creds types.Credentials) (types.AuthSession, error)
	Validate(ctx context.Context, cached types.AuthSession) (types.AuthSession, error)
	Refresh(ctx context.Context) (types.AuthSession, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	Session() (types.AuthSession, bool)
	CurrentUserID() string
}

// TokenHolder carries the bearer token on remote calls. *supabase.Tables implements it.
type TokenHolder interface {
	SetAccessToken(token string) error
}

// Backend is the optional remote side. A zero Backend runs the app local-only.
type Backend struct {
	Auth   Authenticator
	Tables TokenHolder
	Remote syncer.Remote
}

// Speech is the generation client used by the coach and the audio cache.
type Speech interface {
	coach.Generator
	audio.Synthesizer
}

type App struct {
	Settings *config.Settings
	DB       *localstore.DB
	Engine   *syncer.Engine
	Coach    *coach.Coach
	Audio    *audio.Cache
	Player   *audio.Player

	// Visualization has its own player so the countdown can pick chunks by step.
	Visualization *audio.Player
	Countdown     *audio.Countdown

	backend Backend
	log     logrus.FieldLogger

	mu          sync.Mutex
	audioError  string
	scriptName  string
	stopTicking context.CancelFunc
	statement   string

	refreshing atomic.Bool
	bg         sync.WaitGroup
}

// New opens the local store and builds every component from settings.
func New(settings *config.Settings) (*App, error) {
	db, err := localstore.Open(settings.DBPath())
	if err != nil {
		return nil, err
	}

	var backend Backend
	if settings.RemoteConfigured() {
		tables, err := supabase.NewTables(settings.SupabaseURL, settings.SupabaseKey)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		backend = Backend{Auth: supabase.NewAuth(tables.Client().Auth), Tables: tables, Remote: tables}
	} else {
		config.Logger.Warn("Supabase is not configured, running local-only")
	}

	gen := llm.New(llm.Options{
		BaseURL:   settings.GeminiBaseURL,
		APIKey:    settings.GeminiAPIKey,
		TextModel: settings.GeminiTextModel,
		TTSModel:  settings.GeminiTTSModel,
		Voice:     settings.GeminiVoice,
		Timeout:   settings.GenerationTimeout,
	})

	return Compose(settings, db, backend, gen, audio.ClockOutput{}, config.Logger), nil
}

// Compose builds the app from already constructed parts.
func Compose(settings *config.Settings, db *localstore.DB, backend Backend, gen Speech, out audio.Output, log logrus.FieldLogger) *App {
	a := &App{
		Settings: settings,
		DB:       db,
		backend:  backend,
		log:      log.WithField("component", "app"),
	}

	a.Engine = syncer.New(db.KV(), backend.Remote, a,
		syncer.WithLogger(log),
		syncer.WithTimeout(settings.RemoteTimeout),
		syncer.WithAuthFailureHandler(a.onAuthRejected),
	)
	a.Coach = coach.New(gen, a.Engine, log)

	format := audio.Format{SampleRate: settings.AudioSampleRate, Channels: settings.AudioChannels, BitsPerSample: 16}
	a.Audio = audio.NewCache(db.Blobs(), gen, format, log)
	a.Player = audio.NewPlayer(a.Audio, out, log)
	a.Player.OnEvent(a.onAudioEvent)

	viz := audio.VisualizationScript()
	a.Visualization = audio.NewPlayer(a.Audio, out, log)
	a.Visualization.Load(viz)
	a.Countdown = audio.NewCountdown(a.Visualization, settings.VisualizationDuration, len(viz), log)

	a.Engine.ProfileUpdates().Subscribe(a.onProfileUpdated)
	return a
}

// CurrentUserID scopes the engine to the signed-in user.
func (a *App) CurrentUserID() string {
	if a.backend.Auth == nil {
		return ""
	}
	return a.backend.Auth.CurrentUserID()
}

// SessionStatus is what the shell needs to pick a screen.
type SessionStatus struct {
	SignedIn         bool   `json:"signed_in"`
	UserID           string `json:"user_id,omitempty"`
	Email            string `json:"email,omitempty"`
	Validated        bool   `json:"validated"`
	RemoteConfigured bool   `json:"remote_configured"`
	Online           bool   `json:"online"`
	RemoteDisabled   bool   `json:"remote_disabled"`
}

func (a *App) Status() SessionStatus {
	st := SessionStatus{
		RemoteConfigured: a.Engine.RemoteConfigured(),
		Online:           a.Engine.Online(),
		RemoteDisabled:   a.Engine.RemoteDisabled(),
	}
	if a.backend.Auth != nil {
		if s, ok := a.backend.Auth.Session(); ok {
			st.SignedIn = true
			st.UserID = s.UserID
			st.Email = s.Email
		}
	}
	return st
}

// Start restores the cached session and re-validates it against the server. A revoked
// session is cleaned up like a sign-out. It also warms the fixed audio script.
func (a *App) Start(ctx context.Context) SessionStatus {
	statement := a.Engine.GetProfile(ctx).Statement
	a.mu.Lock()
	a.statement = statement
	a.mu.Unlock()
	a.preload(audio.AnxietyReliefScript())

	if a.backend.Auth == nil {
		return a.Status()
	}

	var cached types.AuthSession
	found, err := a.DB.KV().Get(syncer.KeyAuthSession, &cached)
	if err != nil {
		a.log.Warn("Failed to read cached session: ", err)
	}
	if !found || cached.AccessToken == "" {
		return a.Status()
	}

	session, err := a.backend.Auth.Validate(ctx, cached)
	switch {
	case errors.Is(err, supabase.ErrSessionRevoked):
		a.log.Warn("Cached session rejected by the server: ", err)
		a.cleanup(ctx)
		return a.Status()
	case err != nil:
		// Unreachable auth server: stay signed in and local until connectivity returns.
		a.log.Warn("Could not validate session, continuing offline: ", err)
		a.Engine.SetOnline(false)
		a.applySession(cached)
		return a.Status()
	}

	a.applySession(session)
	a.syncInBackground()
	st := a.Status()
	st.Validated = true
	return st
}

// SignIn authenticates and pushes local data to the new session.
func (a *App) SignIn(ctx context.Context, creds types.Credentials) (SessionStatus, error) {
	if a.backend.Auth == nil {
		return a.Status(), syncer.ErrOffline
	}
	previous := a.cachedUserID()
	session, err := a.backend.Auth.SignIn(ctx, creds)
	if err != nil {
		return a.Status(), err
	}
	a.signedIn(ctx, previous, session)
	st := a.Status()
	st.Validated = true
	return st, nil
}

// SignUp registers an account. With email confirmation enabled no session is issued and
// supabase.ErrConfirmationRequired is returned.
func (a *App) SignUp(ctx context.Context, creds types.Credentials) (SessionStatus, error) {
	if a.backend.Auth == nil {
		return a.Status(), syncer.ErrOffline
	}
	previous := a.cachedUserID()
	session, err := a.backend.Auth.SignUp(ctx, creds)
	if err != nil {
		return a.Status(), err
	}
	a.signedIn(ctx, previous, session)
	if creds.FullName != "" {
		p := a.Engine.GetProfile(ctx)
		p.FullName = creds.FullName
		if _, err := a.Engine.SaveProfile(p); err != nil {
			a.log.Warn("Failed to save profile name: ", err)
		}
	}
	st := a.Status()
	st.Validated = true
	return st, nil
}

func (a *App) signedIn(ctx context.Context, previous string, session types.AuthSession) {
	if previous != "" && previous != session.UserID {
		// Another account's cache must never leak into this one.
		a.log.Info("Different user signed in, clearing local data")
		a.cleanup(ctx)
	}
	a.applySession(session)
	a.syncInBackground()
}

func (a *App) applySession(session types.AuthSession) {
	if a.backend.Tables != nil {
		if err := a.backend.Tables.SetAccessToken(session.AccessToken); err != nil {
			a.log.Error("Failed to apply access token: ", err)
		}
	}
	if err := a.DB.KV().Set(syncer.KeyAuthSession, session); err != nil {
		a.log.Warn("Failed to cache session: ", err)
	}
}

func (a *App) syncInBackground() {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		report := a.Engine.OnAuthenticated(context.Background())
		if len(report.Failed) > 0 {
			a.log.WithField("failed", report.Failed).Warn("Some data did not sync")
		}
	}()
}

func (a *App) cachedUserID() string {
	var cached types.AuthSession
	if found, _ := a.DB.KV().Get(syncer.KeyAuthSession, &cached); found {
		return cached.UserID
	}
	return ""
}

// SignOut ends the session and removes every trace of the user from the device.
func (a *App) SignOut(ctx context.Context) error {
	if a.backend.Auth != nil {
		if err := a.backend.Auth.SignOut(ctx); err != nil {
			a.log.Warn("Server sign out failed, clearing local session anyway: ", err)
		}
	}
	return a.cleanup(ctx)
}

// onAuthRejected runs on a background write when the remote rejects the token. Only one
// refresh is in flight at a time.
func (a *App) onAuthRejected() {
	if !a.refreshing.CompareAndSwap(false, true) {
		return
	}
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		defer a.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), a.Settings.RemoteTimeout)
		defer cancel()
		a.RefreshSession(ctx)
	}()
}

// RefreshSession swaps an expired access token for a new one. Local data is only cleared
// when the server refuses the refresh; an unreachable server leaves the session as is.
func (a *App) RefreshSession(ctx context.Context) {
	if a.backend.Auth == nil {
		return
	}
	session, err := a.backend.Auth.Refresh(ctx)
	switch {
	case errors.Is(err, supabase.ErrSessionRevoked):
		a.HandleAuthFailure(ctx)
	case errors.Is(err, supabase.ErrNotSignedIn):
	case err != nil:
		a.log.Warn("Token refresh failed, keeping the session: ", err)
	default:
		a.log.Info("Access token refreshed")
		a.applySession(session)
	}
}

// HandleAuthFailure signs out after the server refused to renew the session.
func (a *App) HandleAuthFailure(ctx context.Context) {
	a.log.Warn("Session expired or revoked, signing out")
	if err := a.SignOut(ctx); err != nil {
		a.log.Error("Sign out after auth failure failed: ", err)
	}
}

// ResetPassword sends a password-reset email.
func (a *App) ResetPassword(ctx context.Context, email string) error {
	if a.backend.Auth == nil {
		return syncer.ErrOffline
	}
	return a.backend.Auth.ResetPassword(ctx, email)
}

func (a *App) cleanup(ctx context.Context) error {
	if a.backend.Tables != nil {
		if err := a.backend.Tables.SetAccessToken(""); err != nil {
			a.log.Warn("Failed to clear access token: ", err)
		}
	}
	a.StopAudio()
	a.Player.Reset()
	a.ResetVisualization()
	if err := a.Audio.Invalidate(ctx, audio.StatementKey); err != nil {
		a.log.Warn(err)
	}

	a.mu.Lock()
	a.statement = ""
	a.scriptName = ""
	a.audioError = ""
	a.mu.Unlock()

	if err := a.Engine.Purge(); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}
	return nil
}

// onProfileUpdated drops the spoken statement when its text changes.
func (a *App) onProfileUpdated(p types.Profile) {
	a.mu.Lock()
	changed := p.Statement != a.statement
	a.statement = p.Statement
	playing := a.scriptName == audio.StatementKey
	a.mu.Unlock()
	if !changed {
		return
	}
	if playing {
		a.Player.Reset()
	}
	if err := a.Audio.Invalidate(context.Background(), audio.StatementKey); err != nil {
		a.log.Warn(err)
	}
}

// Close stops playback, waits for background writes and closes the store.
func (a *App) Close() error {
	a.StopAudio()
	a.ResetVisualization()
	a.bg.Wait()
	a.Engine.Flush()
	// A rejected write may have started a token refresh.
	a.bg.Wait()
	return a.DB.Close()
}

func (a *App) preload(chunks []audio.Chunk) {
	if len(chunks) == 0 || a.Settings.GeminiAPIKey == "" {
		return
	}
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := a.Audio.Preload(ctx, chunks, 3); err != nil {
			a.log.Warn("Audio warm-up incomplete: ", err)
		}
	}()
}
