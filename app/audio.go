package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clementus360/mindset/audio"
	"clementus360/mindset/coach"
	"clementus360/mindset/syncer"
)

const (
	ScriptAnxiety    = "anxiety"
	ScriptStatement  = audio.StatementKey
	ScriptMeditation = "meditation"

	countdownTick = 250 * time.Millisecond
)

var ErrUnknownScript = errors.New("unknown audio script")

// AudioStatus is what the shell renders for the guided-audio screens.
type AudioStatus struct {
	Script string       `json:"script,omitempty"`
	Player audio.Status `json:"player"`
	Error  string       `json:"error,omitempty"`
}

func (a *App) onAudioEvent(ev audio.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch ev.Kind {
	case audio.EventFailed:
		a.audioError = "Could not load audio. Please check your connection and try again."
		if ev.Err != nil && errors.Is(ev.Err, context.DeadlineExceeded) {
			a.audioError = "Audio took too long to load. Please try again."
		}
	case audio.EventStarted:
		a.audioError = ""
	}
}

// LoadScript puts a named script on the main player. The statement script reads the
// profile's personal statement.
func (a *App) LoadScript(ctx context.Context, name string) (AudioStatus, error) {
	var script []audio.Chunk
	switch name {
	case ScriptAnxiety:
		script = audio.AnxietyReliefScript()
	case ScriptStatement:
		script = audio.StatementScript(a.Engine.GetProfile(ctx).Statement)
		if script == nil {
			return a.AudioStatus(), fmt.Errorf("no personal statement saved: %w", syncer.ErrInvalid)
		}
	default:
		return a.AudioStatus(), fmt.Errorf("%q: %w", name, ErrUnknownScript)
	}
	a.loadScript(name, script)
	return a.AudioStatus(), nil
}

// LoadMeditation generates a meditation and loads it for playback.
func (a *App) LoadMeditation(ctx context.Context, theme string) (coach.Meditation, error) {
	m, err := a.Coach.GenerateMeditation(ctx, theme)
	if err != nil {
		return coach.Meditation{}, err
	}
	a.loadScript(ScriptMeditation, audio.MeditationScript(m.ID, m.Text))
	return m, nil
}

func (a *App) loadScript(name string, script []audio.Chunk) {
	a.ResetVisualization()
	a.Player.Load(script)
	a.mu.Lock()
	a.scriptName = name
	a.audioError = ""
	a.mu.Unlock()
}

// PlayAudio resumes the main player. The visualization is paused first so only one source
// is ever heard.
func (a *App) PlayAudio(ctx context.Context) (AudioStatus, error) {
	a.PauseVisualization()
	err := a.Player.Play(ctx)
	return a.AudioStatus(), err
}

// PlayAudioChunk plays one chunk of the main script.
func (a *App) PlayAudioChunk(ctx context.Context, i int) (AudioStatus, error) {
	a.PauseVisualization()
	err := a.Player.PlayChunk(ctx, i)
	return a.AudioStatus(), err
}

func (a *App) StopAudio() AudioStatus {
	a.Player.Stop()
	return a.AudioStatus()
}

func (a *App) ResetAudio() AudioStatus {
	a.Player.Reset()
	return a.AudioStatus()
}

func (a *App) AudioStatus() AudioStatus {
	a.mu.Lock()
	st := AudioStatus{Script: a.scriptName, Error: a.audioError}
	a.mu.Unlock()
	st.Player = a.Player.Status()
	return st
}

// AudioContainer returns the WAV bytes for a chunk of either player's script.
func (a *App) AudioContainer(ctx context.Context, key string) ([]byte, error) {
	for _, p := range []*audio.Player{a.Player, a.Visualization} {
		for _, ch := range p.Script() {
			if ch.Key == key {
				return a.Audio.Container(ctx, ch)
			}
		}
	}
	return nil, fmt.Errorf("audio chunk %q: %w", key, syncer.ErrNotFound)
}

// StartVisualization starts or resumes the guided countdown and its ticker.
func (a *App) StartVisualization(ctx context.Context) audio.CountdownStatus {
	a.Player.Stop()
	// Run returns once the countdown finishes, so each start gets a fresh ticker.
	a.stopTicker()
	st := a.Countdown.Start(ctx)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.mu.Lock()
	a.stopTicking = cancel
	a.mu.Unlock()
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		a.Countdown.Run(runCtx, countdownTick)
	}()
	return st
}

func (a *App) PauseVisualization() audio.CountdownStatus {
	a.stopTicker()
	return a.Countdown.Pause()
}

func (a *App) ResetVisualization() audio.CountdownStatus {
	a.stopTicker()
	return a.Countdown.Reset()
}

func (a *App) SetVisualizationSound(ctx context.Context, on bool) audio.CountdownStatus {
	return a.Countdown.SetSound(ctx, on)
}

func (a *App) VisualizationStatus() audio.CountdownStatus {
	return a.Countdown.Status()
}

func (a *App) stopTicker() {
	a.mu.Lock()
	cancel := a.stopTicking
	a.stopTicking = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
