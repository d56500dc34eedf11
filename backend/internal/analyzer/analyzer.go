// Package analyzer scores free-text messages for toxicity, harassment,
// threats and fraud.
//
// The Engine combines bilingual keyword detection, a lexicon sentiment
// estimate and word-overlap similarity against a labeled reference corpus
// into an AnalysisResult. Results are cached by exact message content.
package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/blackrose-blackhat/cybershield/backend/internal/cache"
	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/metrics"
	"github.com/blackrose-blackhat/cybershield/backend/internal/similarity"
)

// DefaultCorpusWait bounds how long Analyze waits for the corpus to load.
const DefaultCorpusWait = 3 * time.Second

// SimilarityMatcher finds the corpus rows closest to a message.
type SimilarityMatcher interface {
	TopMatches(message string, c *corpus.Corpus) []similarity.Match
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	CorpusWait      time.Duration // 0 = DefaultCorpusWait
	CacheMaxEntries int           // 0 = unbounded
	CacheTTL        time.Duration // 0 = no expiry
	Labels          *Labels       // nil = DefaultLabels
	Matcher         SimilarityMatcher
	Keywords        *KeywordDetector
	Logger          zerolog.Logger
}

// Engine is the message scoring engine. It is safe for concurrent use.
type Engine struct {
	corpus    *corpus.Handle
	keywords  *KeywordDetector
	sentiment *SentimentEstimator
	matcher   SimilarityMatcher
	labels    Labels
	wait      time.Duration
	results   *cache.Cache[AnalysisResult]
	inflight  singleflight.Group
	logger    zerolog.Logger
}

// NewEngine creates an engine over the corpus behind h. A nil handle is
// treated as an already loaded empty corpus.
func NewEngine(h *corpus.Handle, opts Options) *Engine {
	if h == nil {
		h = corpus.Ready(corpus.Empty())
	}

	e := &Engine{
		corpus:    h,
		keywords:  opts.Keywords,
		sentiment: NewSentimentEstimator(),
		matcher:   opts.Matcher,
		labels:    DefaultLabels(),
		wait:      opts.CorpusWait,
		results:   cache.New[AnalysisResult](opts.CacheMaxEntries, opts.CacheTTL),
		logger:    opts.Logger.With().Str("component", "analyzer").Logger(),
	}
	if e.keywords == nil {
		e.keywords = NewKeywordDetector()
	}
	if e.matcher == nil {
		e.matcher = similarity.NewJaccard()
	}
	if opts.Labels != nil {
		e.labels = *opts.Labels
	}
	if e.wait <= 0 {
		e.wait = DefaultCorpusWait
	}
	return e
}

// Analyze scores message. It never fails: a blank message yields
// EmptyResult, and a corpus that is not ready within the wait bound is
// replaced by an empty one. Results computed against a loaded corpus are
// cached by exact message content.
func (e *Engine) Analyze(ctx context.Context, message string) AnalysisResult {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return EmptyResult()
	}

	if cached, ok := e.results.Get(message); ok {
		metrics.CacheHits.Inc()
		e.logger.Debug().Int("length", len(message)).Msg("returning cached analysis")
		return cached
	}

	v, _, _ := e.inflight.Do(message, func() (any, error) {
		if cached, ok := e.results.Get(message); ok {
			return cached, nil
		}

		c, loaded := e.corpus.Wait(ctx, e.wait)
		if !loaded {
			metrics.CorpusWaitTimeouts.Inc()
			e.logger.Warn().Dur("waited", e.wait).Msg("reference corpus not ready, scoring without it")
		}

		result := e.score(message, e.collect(message, c))
		if loaded {
			e.results.Set(message, result)
		}
		return result, nil
	})

	result := v.(AnalysisResult)
	metrics.RecordAnalysis(string(result.Category), time.Since(start))
	return result
}

// CacheStats reports result cache usage.
func (e *Engine) CacheStats() cache.Stats {
	return e.results.Stats()
}

// Keywords returns the keyword detector used by the engine.
func (e *Engine) Keywords() *KeywordDetector {
	return e.keywords
}
