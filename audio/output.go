package audio

import (
	"sync"
	"time"
)

// Source is one buffer being played by an Output.
type Source interface {
	Stop()
}

// Output is the platform audio sink. Play starts buf and returns immediately. onEnded is
// called at most once, from another goroutine, and only when the buffer finished on its
// own; a stopped source never reports an end.
type Output interface {
	Play(buf *Buffer, onEnded func()) (Source, error)
}

// ClockOutput stands in for a sink the process does not own. Each source "plays" for the
// buffer's duration and then ends; the shell fetches the container bytes and plays them
// itself, following the player's events.
type ClockOutput struct {
	// Scale shortens or stretches every buffer. Zero means real time.
	Scale float64
}

func (o ClockOutput) Play(buf *Buffer, onEnded func()) (Source, error) {
	d := buf.Duration()
	if o.Scale > 0 {
		d = time.Duration(float64(d) * o.Scale)
	}
	s := &clockSource{}
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		stopped := s.stopped
		s.stopped = true
		s.mu.Unlock()
		if !stopped {
			onEnded()
		}
	})
	return s, nil
}

type clockSource struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func (s *clockSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.timer.Stop()
}
