// Package cmd implements the chatblocks command line interface.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samsaffron/chatblocks/internal/config"
	"github.com/samsaffron/chatblocks/internal/parser"
)

var rootCmd = &cobra.Command{
	Use:   "chatblocks",
	Short: "Normalize chat message content into typed blocks",
	Long: `chatblocks turns free-form message content (markdown, HTML fragments,
JSON block lists, or a mix) into a normalized tree of content blocks.

Examples:
  chatblocks parse message.md            # parse a file
  echo "# Hi" | chatblocks parse         # parse stdin
  chatblocks detect message.md           # print the detected format
  chatblocks stream session.log          # emit blocks line by line`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log parser diagnostics to stderr")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildParser assembles a parser from the config file, overridden by flags.
func buildParser(flags parseFlags) (*parser.Parser, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose || cfg.Logging.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	maxDepth := cfg.Parser.MaxDepth
	if flags.maxDepth > 0 {
		maxDepth = flags.maxDepth
	}

	return parser.New(
		parser.WithCache(cfg.Parser.Cache && !flags.noCache),
		parser.WithCacheCapacity(cfg.Parser.CacheCapacity),
		parser.WithMetrics(cfg.Parser.Metrics),
		parser.WithCallouts(cfg.Parser.Callouts && !flags.noCallouts),
		parser.WithSanitize(cfg.Parser.Sanitize && !flags.noSanitize),
		parser.WithMaxDepth(maxDepth),
		parser.WithLogger(logger),
	), nil
}

// readInput returns the contents of the named file, or stdin when no file
// is given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
