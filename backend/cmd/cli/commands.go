package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
	"github.com/blackrose-blackhat/cybershield/backend/internal/phishing"
	"github.com/blackrose-blackhat/cybershield/backend/internal/report"
	"github.com/blackrose-blackhat/cybershield/backend/internal/similarity"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [message]",
	Short: "Score a message for toxicity and threat signals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := application.Engine(cmd.Context()).Analyze(cmd.Context(), strings.Join(args, " "))
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printAnalysis(cmd.OutOrStdout(), result)
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [message]",
	Short: "Match a message against the cyber crime rule table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matcher, err := application.Matcher()
		if err != nil {
			return err
		}
		matches := matcher.Detect(strings.Join(args, " "))
		summary := crime.Summarize(matches)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), struct {
				Matches []crime.Match `json:"matches"`
				Summary crime.Summary `json:"summary"`
			}{matches, summary})
		}
		printMatches(cmd.OutOrStdout(), matches)
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Check a link for phishing signals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := phishing.Analyze(args[0])
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printURL(cmd.OutOrStdout(), args[0], result)
		return nil
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar [message]",
	Short: "Find reference corpus messages that resemble a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCorpus(cmd)
		if err != nil {
			return err
		}
		ranked := similarity.RankEntries(strings.Join(args, " "), similarity.EntriesFromCorpus(c))
		if jsonOutput {
			if ranked == nil {
				ranked = []similarity.ScoredEntry{}
			}
			return printJSON(cmd.OutOrStdout(), ranked)
		}
		printSimilar(cmd.OutOrStdout(), ranked)
		return nil
	},
}

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Show reference corpus statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedCorpus(cmd)
		if err != nil {
			return err
		}
		stats := application.Corpus(cmd.Context()).Stats()
		categories := corpus.CategoryCounts(c)
		keywords := corpus.ExtractKeywords(c)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), struct {
				Stats      corpus.LoadStats `json:"stats"`
				Categories map[string]int   `json:"categories"`
				Keywords   []string         `json:"keywords"`
			}{stats, categories, keywords})
		}
		printCorpus(cmd.OutOrStdout(), stats, categories, keywords, corpusKeywordLimit)
		return nil
	},
}

var (
	reportSource    string
	reportPlatform  string
	reportSender    string
	reportAgentID   string
	reportAgentName string
	reportEvidence  []string
)

var reportCmd = &cobra.Command{
	Use:   "report [message]",
	Short: "File an incident report for a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		builder, err := application.Reports(cmd.Context())
		if err != nil {
			return err
		}
		r := builder.Build(cmd.Context(), report.Input{
			Message:  strings.Join(args, " "),
			Source:   reportSource,
			Platform: reportPlatform,
			Sender:   reportSender,
			Agent:    report.Agent{ID: reportAgentID, Name: reportAgentName},
			Evidence: reportEvidence,
		})
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		printReport(cmd.OutOrStdout(), r)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("cybershield v%s\n", Version)
	},
}

const corpusKeywordLimit = 25

func init() {
	reportCmd.Flags().StringVar(&reportSource, "source", "", "Where the message was seen (dm, comment, email)")
	reportCmd.Flags().StringVar(&reportPlatform, "platform", "", "Platform the message came from")
	reportCmd.Flags().StringVar(&reportSender, "sender", "", "Sender handle or address")
	reportCmd.Flags().StringVar(&reportAgentID, "agent-id", "", "Id of the analyst filing the report")
	reportCmd.Flags().StringVar(&reportAgentName, "agent-name", "", "Name of the analyst filing the report")
	reportCmd.Flags().StringSliceVar(&reportEvidence, "evidence", nil, "Evidence already collected (repeatable)")
}

// loadedCorpus waits for the reference corpus. Commands that only make
// sense with a corpus fail when none is configured.
func loadedCorpus(cmd *cobra.Command) (*corpus.Corpus, error) {
	if application.cfg.Corpus.Path == "" {
		return nil, fmt.Errorf("no reference corpus configured, set CORPUS_PATH or --corpus")
	}
	h := application.Corpus(cmd.Context())
	select {
	case <-h.Done():
	case <-cmd.Context().Done():
		return nil, cmd.Context().Err()
	}
	c, _ := h.Wait(cmd.Context(), application.cfg.Corpus.WaitTimeout)
	if err := h.Err(); err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return c, nil
}
