package corpus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackrose-blackhat/cybershield/backend/internal/metrics"
)

// LoadFunc produces a corpus. It runs once, in the background.
type LoadFunc func(ctx context.Context) (*Corpus, LoadStats, error)

// Handle owns the load lifecycle of a corpus. The corpus becomes available
// exactly once; every waiter observes the same completion signal.
type Handle struct {
	once   sync.Once
	done   chan struct{}
	corpus *Corpus
	stats  LoadStats
	err    error
}

// NewHandle returns a handle that has not been resolved yet.
func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Ready returns a handle already resolved with c.
func Ready(c *Corpus) *Handle {
	h := NewHandle()
	h.Resolve(c, LoadStats{Rows: c.Len()}, nil)
	return h
}

// LoadAsync starts load in a goroutine and returns immediately. A failed
// load resolves the handle with an empty corpus; the error is logged and
// kept for Err.
func LoadAsync(ctx context.Context, load LoadFunc, logger zerolog.Logger) *Handle {
	h := NewHandle()
	go func() {
		start := time.Now()
		logger.Info().Msg("loading reference corpus")

		c, stats, err := load(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("reference corpus load failed, continuing with empty corpus")
		} else {
			logger.Info().
				Int("rows", stats.Rows).
				Int("skipped", stats.Skipped).
				Dur("took", time.Since(start)).
				Msg("reference corpus loaded")
		}
		h.Resolve(c, stats, err)
	}()
	return h
}

// LoadFileAsync loads the corpus at path in the background.
func LoadFileAsync(ctx context.Context, path string, logger zerolog.Logger) *Handle {
	return LoadAsync(ctx, func(context.Context) (*Corpus, LoadStats, error) {
		return LoadFile(path)
	}, logger.With().Str("corpus", path).Logger())
}

// Resolve completes the handle. Only the first call has any effect.
func (h *Handle) Resolve(c *Corpus, stats LoadStats, err error) {
	h.once.Do(func() {
		if err != nil || c == nil {
			c = Empty()
		}
		h.corpus = c
		h.stats = stats
		h.err = err
		metrics.CorpusRows.Set(float64(c.Len()))
		close(h.done)
	})
}

// Done is closed once the corpus is available.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Loaded reports whether the handle has been resolved.
func (h *Handle) Loaded() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the corpus is loaded, timeout elapses or ctx is done.
// On timeout or cancellation it returns an empty corpus and false.
func (h *Handle) Wait(ctx context.Context, timeout time.Duration) (*Corpus, bool) {
	if h.Loaded() {
		return h.corpus, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.corpus, true
	case <-timer.C:
		return Empty(), false
	case <-ctx.Done():
		return Empty(), false
	}
}

// Stats returns the load statistics; zero until resolved.
func (h *Handle) Stats() LoadStats {
	if !h.Loaded() {
		return LoadStats{}
	}
	return h.stats
}

// Err returns the load error, if any.
func (h *Handle) Err() error {
	if !h.Loaded() {
		return nil
	}
	return h.err
}
