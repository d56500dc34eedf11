package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/phishing"
	"github.com/blackrose-blackhat/cybershield/backend/internal/report"
	"github.com/blackrose-blackhat/cybershield/backend/internal/similarity"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive triage: file a report for every message typed",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

const shellHelp = `Commands:
  <message>         analyze the message and file a report
  url <link>        check a link for phishing
  similar <message> search the reference corpus
  stats             show analysis cache usage
  help              show this help
  exit, quit        leave the shell`

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, colorCyan+colorBold+`
╔═══════════════════════════════════════════════════════════╗
║          CYBERSHIELD - Interactive Triage                 ║
║          Type a message to analyze and report it          ║
║          Type 'help' for commands, 'exit' to quit         ║
╚═══════════════════════════════════════════════════════════╝`+colorReset)
	fmt.Fprintln(out)

	builder, err := application.Reports(ctx)
	if err != nil {
		return err
	}
	policy, err := application.Policy()
	if err != nil {
		return err
	}

	cfg := application.cfg
	corpusSource := "none"
	if cfg.Corpus.Path != "" {
		corpusSource = cfg.Corpus.Path + " (loading in background)"
	}
	policySource := "embedded"
	if cfg.Escalation.PolicyPath != "" {
		policySource = cfg.Escalation.PolicyPath
	}

	fmt.Fprintf(out, "%s[✓] Components initialized%s\n", colorGreen, colorReset)
	fmt.Fprintf(out, "    Corpus: %s\n", corpusSource)
	fmt.Fprintf(out, "    Policy: %s (v%s)\n", policySource, policy.PolicyVersion())

	if cfg.Metrics.Enabled {
		srv := startMetricsServer(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		fmt.Fprintf(out, "    Metrics: http://%s/metrics\n", cfg.Metrics.Addr)
	}
	fmt.Fprintln(out)

	return shellLoop(ctx, cmd.InOrStdin(), out, builder)
}

func shellLoop(ctx context.Context, in io.Reader, out io.Writer, builder *report.Builder) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s%s> %s", colorBold, colorBlue, colorReset)

		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(command) {
		case "exit", "quit":
			fmt.Fprintln(out, colorCyan+"Goodbye!"+colorReset)
			return nil
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "url":
			if rest == "" {
				fmt.Fprintln(out, "usage: url <link>")
				continue
			}
			printURL(out, rest, phishing.Analyze(rest))
		case "similar":
			c, err := waitCorpus(ctx)
			if err != nil {
				fmt.Fprintf(out, "%s%v%s\n", colorRed, err, colorReset)
				continue
			}
			printSimilar(out, similarity.RankEntries(rest, similarity.EntriesFromCorpus(c)))
		case "stats":
			stats := application.Engine(ctx).CacheStats()
			fmt.Fprintf(out, "cache: %d/%d entries, %d hits\n", stats.Size, stats.MaxSize, stats.TotalHits)
		default:
			printReport(out, builder.Build(ctx, report.Input{Message: line, Source: "shell"}))
		}
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

func waitCorpus(ctx context.Context) (*corpus.Corpus, error) {
	if application.cfg.Corpus.Path == "" {
		return nil, errors.New("no reference corpus configured")
	}
	c, ok := application.Corpus(ctx).Wait(ctx, application.cfg.Corpus.WaitTimeout)
	if !ok {
		return nil, errors.New("reference corpus is still loading, try again shortly")
	}
	return c, nil
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}
