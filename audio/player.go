package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clementus360/mindset/config"

	"github.com/sirupsen/logrus"
)

var ErrEmptyScript = errors.New("no audio script loaded")

type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type EventKind string

const (
	EventLoading EventKind = "loading"
	EventStarted EventKind = "started"
	EventEnded   EventKind = "ended"
	EventIdle    EventKind = "idle"
	EventFailed  EventKind = "failed"
)

// Event reports a player transition. Index is the chunk the event refers to.
type Event struct {
	Kind  EventKind `json:"kind"`
	Index int       `json:"index"`
	Key   string    `json:"key,omitempty"`
	Err   error     `json:"-"`
}

// Status is a snapshot of the player.
type Status struct {
	State  State  `json:"state"`
	Index  int    `json:"index"`
	Length int    `json:"length"`
	Key    string `json:"key,omitempty"`
}

// Resolver turns a chunk into a playable buffer. *Cache implements it.
type Resolver interface {
	Resolve(ctx context.Context, ch Chunk) (*Buffer, error)
}

// Player plays a script one chunk at a time. A natural end of chunk i starts chunk i+1;
// after the last chunk the player goes idle. At most one source is active at a time.
//
// Every start bumps a generation counter. Chunk ends and resolutions carry the generation
// they were started under and are ignored once it is stale, so nothing started before a
// Stop can play after it.
type Player struct {
	resolver Resolver
	out      Output
	log      logrus.FieldLogger

	mu        sync.Mutex
	script    []Chunk
	state     State
	index     int
	gen       uint64
	advance   bool
	source    Source
	ctx       context.Context
	listeners []func(Event)
}

func NewPlayer(resolver Resolver, out Output, log logrus.FieldLogger) *Player {
	if log == nil {
		log = config.Logger
	}
	return &Player{
		resolver: resolver,
		out:      out,
		log:      log.WithField("component", "audio_player"),
		ctx:      context.Background(),
	}
}

// OnEvent registers fn for every later event. Listeners run on the goroutine that caused
// the transition and must not block.
func (p *Player) OnEvent(fn func(Event)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Load stops playback and replaces the script. The pointer goes back to 0.
func (p *Player) Load(script []Chunk) {
	p.mu.Lock()
	wasActive := p.halt()
	p.script = append([]Chunk(nil), script...)
	p.index = 0
	p.mu.Unlock()
	if wasActive {
		p.emit(Event{Kind: EventIdle})
	}
}

// Play starts the script at the current pointer and returns once that chunk is playing or
// failed to resolve. Later chunks follow in the background.
func (p *Player) Play(ctx context.Context) error {
	return p.start(ctx, -1, true)
}

// PlayChunk plays chunk i alone and leaves the pointer on it.
func (p *Player) PlayChunk(ctx context.Context, i int) error {
	return p.start(ctx, i, false)
}

// Stop halts the active source before returning. The pointer is kept so Play resumes
// from the same chunk.
func (p *Player) Stop() {
	p.mu.Lock()
	wasActive := p.halt()
	idx := p.index
	p.mu.Unlock()
	if wasActive {
		p.emit(Event{Kind: EventIdle, Index: idx})
	}
}

// Pause is Stop.
func (p *Player) Pause() {
	p.Stop()
}

// Reset stops and rewinds to the first chunk.
func (p *Player) Reset() {
	p.mu.Lock()
	wasActive := p.halt()
	p.index = 0
	p.mu.Unlock()
	if wasActive {
		p.emit(Event{Kind: EventIdle})
	}
}

// Script returns a copy of the loaded script.
func (p *Player) Script() []Chunk {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Chunk(nil), p.script...)
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{State: p.state, Index: p.index, Length: len(p.script)}
	if p.index < len(p.script) {
		st.Key = p.script[p.index].Key
	}
	return st
}

func (p *Player) start(ctx context.Context, i int, advance bool) error {
	p.mu.Lock()
	if len(p.script) == 0 {
		p.mu.Unlock()
		return ErrEmptyScript
	}
	if i >= len(p.script) {
		p.mu.Unlock()
		return fmt.Errorf("chunk %d out of range (script has %d)", i, len(p.script))
	}
	p.halt()
	if i >= 0 {
		p.index = i
	}
	if p.index >= len(p.script) {
		p.index = 0
	}
	p.advance = advance
	// Background advances outlive the request that started playback.
	p.ctx = context.WithoutCancel(ctx)
	gen, idx, ch := p.enter()
	p.mu.Unlock()

	p.emit(Event{Kind: EventLoading, Index: idx, Key: ch.Key})
	return p.load(ctx, gen, idx, ch)
}

// enter moves to Loading for the current pointer under a new generation. Caller holds mu.
func (p *Player) enter() (uint64, int, Chunk) {
	p.gen++
	p.state = StateLoading
	return p.gen, p.index, p.script[p.index]
}

// halt stops the active source and invalidates pending work. Caller holds mu.
func (p *Player) halt() bool {
	wasActive := p.state != StateIdle
	if p.source != nil {
		p.source.Stop()
		p.source = nil
	}
	p.gen++
	p.state = StateIdle
	return wasActive
}

func (p *Player) load(ctx context.Context, gen uint64, idx int, ch Chunk) error {
	buf, err := p.resolver.Resolve(ctx, ch)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return nil
	}
	if err == nil {
		var src Source
		src, err = p.out.Play(buf, func() { p.ended(gen) })
		if err == nil {
			p.source = src
			p.state = StatePlaying
			p.mu.Unlock()
			p.emit(Event{Kind: EventStarted, Index: idx, Key: ch.Key})
			return nil
		}
	}
	p.gen++
	p.state = StateIdle
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{"index": idx, "key": ch.Key}).Error("Failed to play chunk: ", err)
	p.emit(Event{Kind: EventFailed, Index: idx, Key: ch.Key, Err: err})
	p.emit(Event{Kind: EventIdle, Index: idx})
	return err
}

func (p *Player) ended(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	p.source = nil
	done := p.index
	doneKey := p.script[done].Key

	if !p.advance || done+1 >= len(p.script) {
		p.state = StateIdle
		if p.advance {
			p.index = 0
		}
		p.mu.Unlock()
		p.emit(Event{Kind: EventEnded, Index: done, Key: doneKey})
		p.emit(Event{Kind: EventIdle, Index: done})
		return
	}

	p.index = done + 1
	next, idx, ch := p.enter()
	ctx := p.ctx
	p.mu.Unlock()

	p.emit(Event{Kind: EventEnded, Index: done, Key: doneKey})
	p.emit(Event{Kind: EventLoading, Index: idx, Key: ch.Key})
	_ = p.load(ctx, next, idx, ch)
}

func (p *Player) emit(ev Event) {
	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
