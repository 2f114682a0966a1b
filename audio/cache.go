package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"clementus360/mindset/config"
	"clementus360/mindset/localstore"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// BlobStore is the durable binary store the cache persists containers to.
type BlobStore interface {
	Get(ctx context.Context, key string) (localstore.Blob, bool, error)
	Put(ctx context.Context, key string, data []byte, tag string) error
	Delete(ctx context.Context, key string) error
}

// Synthesizer generates speech for text and returns base64 raw PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Chunk is one segment of a guided-audio script.
type Chunk struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// LoadTimeout bounds one shared lookup, including generation.
const LoadTimeout = 2 * time.Minute

type memEntry struct {
	buf *Buffer
	tag string
}

// Cache resolves chunks to decoded buffers, checking memory, then the durable store,
// then the speech model. Every stored container is tagged with the hash of the text it
// was generated from; a different hash means the text changed and the audio is stale.
type Cache struct {
	blobs  BlobStore
	synth  Synthesizer
	format Format
	log    logrus.FieldLogger

	mu  sync.Mutex
	mem map[string]memEntry

	inflight    singleflight.Group
	loadTimeout time.Duration
}

func NewCache(blobs BlobStore, synth Synthesizer, format Format, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = config.Logger
	}
	return &Cache{
		blobs:  blobs,
		synth:  synth,
		format: format,
		log:    log.WithField("component", "audio_cache"),
		mem:    make(map[string]memEntry),

		loadTimeout: LoadTimeout,
	}
}

// TextHash fingerprints the source text of a chunk.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Resolve returns a playable buffer for ch. Concurrent calls for the same chunk share a
// single lookup, so the speech model is called at most once per chunk at a time. The
// lookup is not tied to any one caller: a caller that gives up returns its own ctx error
// and the others keep waiting. Failures are not remembered; the next call starts over.
func (c *Cache) Resolve(ctx context.Context, ch Chunk) (*Buffer, error) {
	tag := TextHash(ch.Text)
	if buf, ok := c.fromMemory(ch.Key, tag); ok {
		return buf, nil
	}

	res := c.inflight.DoChan(ch.Key+"\x00"+tag, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		return c.load(lctx, ch, tag)
	})
	select {
	case r := <-res:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Buffer), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Regenerate drops any cached audio for ch and generates it again.
func (c *Cache) Regenerate(ctx context.Context, ch Chunk) (*Buffer, error) {
	if err := c.Invalidate(ctx, ch.Key); err != nil {
		return nil, err
	}
	return c.Resolve(ctx, ch)
}

// Invalidate removes key from memory and from the durable store.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.mem, key)
	c.mu.Unlock()

	if err := c.blobs.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}

// Cached reports whether key has a decoded buffer in memory.
func (c *Cache) Cached(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.mem[key]
	return ok
}

// Container returns ch as a self-describing WAVE container, resolving it first.
func (c *Cache) Container(ctx context.Context, ch Chunk) ([]byte, error) {
	buf, err := c.Resolve(ctx, ch)
	if err != nil {
		return nil, err
	}
	return EncodeWAV(buf.PCM, buf.Format)
}

// Preload resolves every chunk with at most parallel lookups in flight. Failures are
// logged and joined; chunks that did resolve stay cached.
func (c *Cache) Preload(ctx context.Context, chunks []Chunk, parallel int) error {
	if parallel <= 0 {
		parallel = 4
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(parallel)
	for _, ch := range chunks {
		g.Go(func() error {
			if _, err := c.Resolve(ctx, ch); err != nil {
				c.log.WithField("key", ch.Key).Warn("Preload failed: ", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (c *Cache) fromMemory(key, tag string) (*Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.mem[key]
	if !ok || e.tag != tag {
		return nil, false
	}
	return e.buf, true
}

func (c *Cache) remember(key, tag string, buf *Buffer) {
	c.mu.Lock()
	c.mem[key] = memEntry{buf: buf, tag: tag}
	c.mu.Unlock()
}

func (c *Cache) load(ctx context.Context, ch Chunk, tag string) (*Buffer, error) {
	if buf, ok := c.fromMemory(ch.Key, tag); ok {
		return buf, nil
	}
	log := c.log.WithField("key", ch.Key)

	blob, found, err := c.blobs.Get(ctx, ch.Key)
	if err != nil {
		log.Warn("Durable audio lookup failed, regenerating: ", err)
		found = false
	}
	if found {
		if blob.Tag == tag {
			buf, err := DecodeWAV(blob.Data)
			if err == nil {
				c.remember(ch.Key, tag, buf)
				return buf, nil
			}
			log.Warn("Cached audio failed to decode, regenerating: ", err)
		} else {
			log.Info("Source text changed, discarding cached audio")
		}
		if err := c.Invalidate(ctx, ch.Key); err != nil {
			log.Warn(err)
		}
	}

	return c.generate(ctx, ch, tag)
}

func (c *Cache) generate(ctx context.Context, ch Chunk, tag string) (*Buffer, error) {
	encoded, err := c.synth.Synthesize(ctx, ch.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate audio for %s: %w", ch.Key, err)
	}
	pcm, err := DecodePCMBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to generate audio for %s: %w", ch.Key, err)
	}
	// A trailing partial frame would make the container unreadable.
	if align := c.format.BlockAlign(); align > 0 && len(pcm)%align != 0 {
		extra := len(pcm) % align
		c.log.WithField("key", ch.Key).Debugf("Dropping %d trailing bytes of generated audio", extra)
		pcm = pcm[:len(pcm)-extra]
	}
	container, err := EncodeWAV(pcm, c.format)
	if err != nil {
		return nil, err
	}
	buf, err := DecodeWAV(container)
	if err != nil {
		return nil, fmt.Errorf("generated audio for %s is not playable: %w", ch.Key, err)
	}

	if err := c.blobs.Put(ctx, ch.Key, container, tag); err != nil {
		// Still playable this session; it will be generated again next time.
		c.log.WithField("key", ch.Key).Warn("Failed to persist generated audio: ", err)
	}
	c.remember(ch.Key, tag, buf)
	return buf, nil
}
