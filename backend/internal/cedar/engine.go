// Package cedar decides how an incident report is routed, using Cedar
// policies evaluated over the report's verdict. Policies can be reloaded
// from disk while the process runs.
package cedar

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cedar-policy/cedar-go"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/blackrose-blackhat/cybershield/backend/internal/metrics"
)

//go:embed escalation.cedar
var defaultPolicy []byte

// Decision is the routing outcome for a report
type Decision string

const (
	ESCALATE Decision = "ESCALATE"
	REVIEW   Decision = "REVIEW"
	ARCHIVE  Decision = "ARCHIVE"
)

// rank orders decisions so the strongest permit wins
func (d Decision) rank() int {
	switch d {
	case ESCALATE:
		return 2
	case REVIEW:
		return 1
	default:
		return 0
	}
}

// Facts are the report attributes exposed to policies as context
type Facts struct {
	Category      string
	Toxicity      int
	Confidence    int
	Severity      int // 1 (Low) to 4 (Critical)
	CriticalMatch bool
	MatchCount    int
	Categories    []string
}

// Result is the outcome of a policy evaluation
type Result struct {
	Decision Decision `json:"decision"`
	PolicyID string   `json:"policy_id,omitempty"`
	Reason   string   `json:"reason"`
	Version  string   `json:"policy_version"`
}

// Engine wraps the Cedar policy set with hot-reloading support
type Engine struct {
	policySet     atomic.Pointer[cedar.PolicySet]
	policyVersion atomic.Pointer[string]
	PolicyPath    string // empty = embedded default policy

	watcher    *fsnotify.Watcher
	stopWatch  chan struct{}
	stopOnce   sync.Once
	logger     zerolog.Logger
	reloadLock sync.Mutex
	debounce   time.Duration
}

// NewEngine loads policies from policyPath, or the embedded default
// policy when the path is empty.
func NewEngine(policyPath string, logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		PolicyPath: policyPath,
		stopWatch:  make(chan struct{}),
		logger:     logger.With().Str("component", "escalation").Logger(),
		debounce:   500 * time.Millisecond,
	}

	if err := e.reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// PolicyVersion returns the current policy version
func (e *Engine) PolicyVersion() string {
	v := e.policyVersion.Load()
	if v == nil {
		return ""
	}
	return *v
}

// StartHotReload watches the policy file and reloads it on change
func (e *Engine) StartHotReload() error {
	if e.PolicyPath == "" {
		return fmt.Errorf("hot reload needs a policy file, the embedded policy is in use")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	e.watcher = watcher

	if err := watcher.Add(e.PolicyPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch policy file: %w", err)
	}

	go e.watchLoop()

	e.logger.Info().Str("path", e.PolicyPath).Msg("policy hot reload enabled")
	return nil
}

// StopHotReload stops the file watcher
func (e *Engine) StopHotReload() {
	if e.watcher == nil {
		return
	}
	e.stopOnce.Do(func() {
		close(e.stopWatch)
		e.watcher.Close()
	})
}

func (e *Engine) watchLoop() {
	// editors often write a file in several steps
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(e.debounce, func() {
				e.reloadLock.Lock()
				defer e.reloadLock.Unlock()

				oldVersion := e.PolicyVersion()
				if err := e.reload(); err != nil {
					e.logger.Error().Err(err).Msg("policy hot reload failed, keeping previous policy")
					return
				}
				e.logger.Info().
					Str("from", oldVersion).
					Str("to", e.PolicyVersion()).
					Msg("policy reloaded")
			})
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn().Err(err).Msg("policy watcher error")
		case <-e.stopWatch:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// reload parses the policy source and swaps it in atomically
func (e *Engine) reload() error {
	data := defaultPolicy
	name := "escalation.cedar"
	if e.PolicyPath != "" {
		var err error
		data, err = os.ReadFile(e.PolicyPath)
		if err != nil {
			return fmt.Errorf("failed to read policy file: %w", err)
		}
		name = e.PolicyPath
	}

	ps, err := cedar.NewPolicySetFromBytes(name, data)
	if err != nil {
		return fmt.Errorf("failed to parse cedar policies: %w", err)
	}

	hash := sha256.Sum256(data)
	version := hex.EncodeToString(hash[:])[:12]

	e.policySet.Store(ps)
	e.policyVersion.Store(&version)
	return nil
}

// Evaluate decides how a report with the given facts is routed
func (e *Engine) Evaluate(f Facts) Result {
	result := e.evaluate(f)
	metrics.RecordEscalation(string(result.Decision))
	return result
}

func (e *Engine) evaluate(f Facts) Result {
	version := e.PolicyVersion()
	ps := e.policySet.Load()
	if ps == nil {
		return Result{Decision: REVIEW, Reason: "Policy engine not initialized", Version: version}
	}

	categories := make([]cedar.Value, len(f.Categories))
	for i, c := range f.Categories {
		categories[i] = cedar.String(c)
	}

	req := cedar.Request{
		Principal: cedar.NewEntityUID("Analyst", "default"),
		Action:    cedar.NewEntityUID("Action", "triage"),
		Resource:  cedar.NewEntityUID("Report", "current"),
		Context: cedar.NewRecord(cedar.RecordMap{
			"category":       cedar.String(f.Category),
			"toxicity":       cedar.Long(int64(f.Toxicity)),
			"confidence":     cedar.Long(int64(f.Confidence)),
			"severity":       cedar.Long(int64(f.Severity)),
			"critical_match": cedar.Boolean(f.CriticalMatch),
			"match_count":    cedar.Long(int64(f.MatchCount)),
			"categories":     cedar.NewSet(categories...),
		}),
	}

	ok, diagnostics := cedar.Authorize(ps, cedar.EntityMap{}, req)
	if len(diagnostics.Errors) > 0 {
		e.logger.Warn().Int("errors", len(diagnostics.Errors)).Msg("policy evaluation errors")
	}
	if !ok {
		return Result{Decision: ARCHIVE, Reason: "No escalation policy matched", Version: version}
	}

	best := Result{Decision: ARCHIVE, Version: version}
	for _, reason := range diagnostics.Reasons {
		p := ps.Get(reason.PolicyID)
		if p == nil {
			continue
		}
		annotations := p.Annotations()

		decision := REVIEW
		if v, ok := annotations["decision"]; ok {
			decision = Decision(string(v))
		}
		if decision.rank() <= best.Decision.rank() {
			continue
		}

		policyID := string(reason.PolicyID)
		if v, ok := annotations["id"]; ok {
			policyID = string(v)
		}
		best.Decision = decision
		best.PolicyID = policyID
		best.Reason = fmt.Sprintf("Policy %s requires %s", policyID, decision)
	}

	if best.Decision == ARCHIVE {
		best.Reason = "Matched policies carry no routing decision"
	}
	return best
}
