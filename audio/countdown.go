package audio

import (
	"context"
	"sync"
	"time"

	"clementus360/mindset/config"

	"github.com/sirupsen/logrus"
)

// ChunkPlayer is the part of *Player the countdown drives.
type ChunkPlayer interface {
	PlayChunk(ctx context.Context, i int) error
	Stop()
}

// CountdownStatus is a snapshot of a Countdown.
type CountdownStatus struct {
	Active    bool          `json:"active"`
	Sound     bool          `json:"sound"`
	Step      int           `json:"step"`
	Steps     int           `json:"steps"`
	Remaining time.Duration `json:"remaining"`
	Finished  bool          `json:"finished"`
}

// Countdown is the guided visualization timer. The current step is derived from elapsed
// wall-clock time, never from chunk ends. While active with sound on, each step change
// plays that step's chunk; turning either flag off stops playback.
type Countdown struct {
	player ChunkPlayer
	total  time.Duration
	steps  int
	now    func() time.Time
	log    logrus.FieldLogger

	mu        sync.Mutex
	active    bool
	sound     bool
	elapsed   time.Duration
	startedAt time.Time
	played    int
}

func NewCountdown(player ChunkPlayer, total time.Duration, steps int, log logrus.FieldLogger) *Countdown {
	if log == nil {
		log = config.Logger
	}
	if steps < 1 {
		steps = 1
	}
	return &Countdown{
		player: player,
		total:  total,
		steps:  steps,
		now:    time.Now,
		log:    log.WithField("component", "countdown"),
		sound:  true,
		played: -1,
	}
}

// Start resumes the countdown. A finished countdown starts over.
func (c *Countdown) Start(ctx context.Context) CountdownStatus {
	c.mu.Lock()
	if !c.active {
		if c.elapsed >= c.total {
			c.elapsed = 0
			c.played = -1
		}
		c.active = true
		c.startedAt = c.now()
	}
	c.mu.Unlock()
	return c.Tick(ctx)
}

// Pause freezes the remaining time and stops sound.
func (c *Countdown) Pause() CountdownStatus {
	c.mu.Lock()
	if c.active {
		c.elapsed = c.elapsedLocked()
		c.active = false
	}
	// Resuming replays the current step.
	c.played = -1
	st := c.statusLocked()
	c.mu.Unlock()
	c.player.Stop()
	return st
}

// Reset stops the countdown and rewinds it to the full duration.
func (c *Countdown) Reset() CountdownStatus {
	c.mu.Lock()
	c.active = false
	c.elapsed = 0
	c.played = -1
	st := c.statusLocked()
	c.mu.Unlock()
	c.player.Stop()
	return st
}

// SetSound toggles narration. Turning it on plays the current step right away when active.
func (c *Countdown) SetSound(ctx context.Context, on bool) CountdownStatus {
	c.mu.Lock()
	c.sound = on
	c.played = -1
	c.mu.Unlock()
	if !on {
		c.player.Stop()
	}
	return c.Tick(ctx)
}

// Tick advances the derived step and plays it if it changed. It finishes the countdown
// once the full duration has elapsed.
func (c *Countdown) Tick(ctx context.Context) CountdownStatus {
	c.mu.Lock()
	elapsed := c.elapsedLocked()
	if c.active && elapsed >= c.total {
		c.active = false
		c.elapsed = c.total
		st := c.statusLocked()
		c.mu.Unlock()
		c.player.Stop()
		return st
	}
	step := c.stepAt(elapsed)
	play := c.active && c.sound && step != c.played
	if play {
		c.played = step
	}
	st := c.statusLocked()
	c.mu.Unlock()

	if play {
		if err := c.player.PlayChunk(ctx, step); err != nil {
			c.log.WithField("step", step).Warn("Failed to play visualization step: ", err)
		}
	}
	return st
}

// Run ticks every interval until ctx is done or the countdown stops.
func (c *Countdown) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if st := c.Tick(ctx); !st.Active {
				return
			}
		}
	}
}

func (c *Countdown) Status() CountdownStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Countdown) elapsedLocked() time.Duration {
	e := c.elapsed
	if c.active {
		e += c.now().Sub(c.startedAt)
	}
	if e > c.total {
		e = c.total
	}
	return e
}

func (c *Countdown) stepAt(elapsed time.Duration) int {
	if c.total <= 0 {
		return c.steps - 1
	}
	step := int(int64(elapsed) * int64(c.steps) / int64(c.total))
	if step >= c.steps {
		step = c.steps - 1
	}
	return step
}

func (c *Countdown) statusLocked() CountdownStatus {
	elapsed := c.elapsedLocked()
	return CountdownStatus{
		Active:    c.active,
		Sound:     c.sound,
		Step:      c.stepAt(elapsed),
		Steps:     c.steps,
		Remaining: c.total - elapsed,
		Finished:  elapsed >= c.total,
	}
}
