package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// parseFlags are the per-invocation parser overrides.
type parseFlags struct {
	format     string
	noCache    bool
	noCallouts bool
	noSanitize bool
	maxDepth   int
	pretty     bool
	stats      bool
}

var parseOpts parseFlags

func init() {
	parseCmd.Flags().StringVar(&parseOpts.format, "format", "", "Force the input format (markdown, html, blocks, mixed)")
	parseCmd.Flags().BoolVar(&parseOpts.noCache, "no-cache", false, "Disable the parse cache")
	parseCmd.Flags().BoolVar(&parseOpts.noCallouts, "no-callouts", false, "Disable callout quote translation")
	parseCmd.Flags().BoolVar(&parseOpts.noSanitize, "no-sanitize", false, "Disable HTML sanitization (headless use only)")
	parseCmd.Flags().IntVar(&parseOpts.maxDepth, "max-depth", 0, "Override the recursion depth bound")
	parseCmd.Flags().BoolVar(&parseOpts.pretty, "pretty", false, "Indent the JSON output")
	parseCmd.Flags().BoolVar(&parseOpts.stats, "stats", false, "Print parse stats to stderr")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse content into a block envelope",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}

		p, err := buildParser(parseOpts)
		if err != nil {
			return err
		}

		result := p.ParseAs(raw, blocks.Format(parseOpts.format))

		var out []byte
		if parseOpts.pretty {
			out, err = json.MarshalIndent(result, "", "  ")
		} else {
			out, err = json.Marshal(result)
		}
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if parseOpts.stats {
			fmt.Fprintf(os.Stderr, "parsed %d blocks (%d nodes) in %s\n",
				result.Stats.BlockCount, result.Stats.NodeCount, result.Stats.ParseTime)
		}
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}
