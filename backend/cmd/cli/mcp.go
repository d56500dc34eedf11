package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the triage tools over MCP on stdio",
	Long:  "Run a Model Context Protocol server on stdin/stdout. Logs go to LOG_OUTPUT, which must not be stdout.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		builder, err := application.Reports(ctx)
		if err != nil {
			return err
		}
		matcher, err := application.Matcher()
		if err != nil {
			return err
		}

		tools := mcp.Tools{
			Analyzer: application.Engine(ctx),
			Crime:    matcher,
			Reports:  builder,
		}
		if application.cfg.Corpus.Path != "" {
			tools.Corpus = func(ctx context.Context) (*corpus.Corpus, error) {
				return waitCorpus(ctx)
			}
		}

		application.logger.Info().Msg("MCP server starting on stdio")
		return mcp.NewServer(tools, Version, application.logger).Serve(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
