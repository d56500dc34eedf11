package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
	"github.com/blackrose-blackhat/cybershield/backend/internal/audit"
	"github.com/blackrose-blackhat/cybershield/backend/internal/cedar"
	"github.com/blackrose-blackhat/cybershield/backend/internal/config"
	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
	"github.com/blackrose-blackhat/cybershield/backend/internal/logging"
	"github.com/blackrose-blackhat/cybershield/backend/internal/report"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	jsonOutput  bool
	corpusFlag  string
	rulesFlag   string
	policyFlag  string
	application *app
)

var rootCmd = &cobra.Command{
	Use:   "cybershield",
	Short: "CyberShield - cyber crime triage for chat messages and links",
	Long: `CyberShield scores messages for toxicity, matches them against known
cyber crime patterns, checks links for phishing and files incident reports
routed by an escalation policy.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env file is fine
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if corpusFlag != "" {
			cfg.Corpus.Path = corpusFlag
		}
		if rulesFlag != "" {
			cfg.Rules.Path = rulesFlag
		}
		if policyFlag != "" {
			cfg.Escalation.PolicyPath = policyFlag
		}

		logger, release, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		application = &app{cfg: cfg, logger: logger, closers: []func() error{release}}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&corpusFlag, "corpus", "", "Reference corpus file (csv, tsv or xlsx); overrides CORPUS_PATH")
	rootCmd.PersistentFlags().StringVar(&rulesFlag, "rules", "", "Crime rule table (YAML); overrides RULES_PATH")
	rootCmd.PersistentFlags().StringVar(&policyFlag, "policy", "", "Escalation policy (Cedar); overrides ESCALATION_POLICY_PATH")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		stop()
		os.Exit(1)
	}
}

// app builds components on first use so a command only pays for what it
// touches.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	closers []func() error

	corpusHandle *corpus.Handle
	engine       *analyzer.Engine
	matcher      *crime.Matcher
	policy       *cedar.Engine
	auditLog     *audit.Logger
	builder      *report.Builder
}

// Corpus starts loading the reference corpus in the background
func (a *app) Corpus(ctx context.Context) *corpus.Handle {
	if a.corpusHandle != nil {
		return a.corpusHandle
	}
	if a.cfg.Corpus.Path == "" {
		a.corpusHandle = corpus.Ready(corpus.Empty())
	} else {
		a.corpusHandle = corpus.LoadFileAsync(ctx, a.cfg.Corpus.Path, a.logger)
	}
	return a.corpusHandle
}

func (a *app) Engine(ctx context.Context) *analyzer.Engine {
	if a.engine == nil {
		opts := a.cfg.AnalyzerOptions()
		opts.Logger = a.logger
		a.engine = analyzer.NewEngine(a.Corpus(ctx), opts)
	}
	return a.engine
}

func (a *app) Matcher() (*crime.Matcher, error) {
	if a.matcher == nil {
		m, err := crime.LoadMatcher(a.cfg.Rules.Path)
		if err != nil {
			return nil, fmt.Errorf("loading crime rules: %w", err)
		}
		a.logger.Debug().Str("version", m.Version()).Int("rules", len(m.Rules())).Msg("crime rules loaded")
		a.matcher = m
	}
	return a.matcher, nil
}

func (a *app) Policy() (*cedar.Engine, error) {
	if a.policy != nil {
		return a.policy, nil
	}
	e, err := cedar.NewEngine(a.cfg.Escalation.PolicyPath, a.logger)
	if err != nil {
		return nil, fmt.Errorf("loading escalation policy: %w", err)
	}
	if a.cfg.Escalation.WatchChanges && a.cfg.Escalation.PolicyPath != "" {
		if err := e.StartHotReload(); err != nil {
			a.logger.Warn().Err(err).Msg("policy hot reload unavailable")
		} else {
			a.closers = append(a.closers, func() error {
				e.StopHotReload()
				return nil
			})
		}
	}
	a.policy = e
	return e, nil
}

func (a *app) AuditLog() (*audit.Logger, error) {
	if a.auditLog != nil || a.cfg.Audit.Path == "" {
		return a.auditLog, nil
	}
	l, err := audit.NewLogger(a.cfg.Audit.Path, a.logger)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	a.closers = append(a.closers, l.Close)
	a.auditLog = l
	return l, nil
}

func (a *app) Reports(ctx context.Context) (*report.Builder, error) {
	if a.builder != nil {
		return a.builder, nil
	}
	matcher, err := a.Matcher()
	if err != nil {
		return nil, err
	}
	policy, err := a.Policy()
	if err != nil {
		return nil, err
	}
	auditLog, err := a.AuditLog()
	if err != nil {
		return nil, err
	}
	a.builder = report.NewBuilder(a.Engine(ctx), matcher, policy, auditLog, a.logger)
	return a.builder, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
