package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/samsaffron/chatblocks/internal/blocks"
	"github.com/samsaffron/chatblocks/internal/parser"
)

func init() {
	rootCmd.AddCommand(streamCmd)
}

var streamCmd = &cobra.Command{
	Use:   "stream [file]",
	Short: "Parse incrementally, emitting one JSON block per line",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := os.Stdin
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		p, err := buildParser(parseFlags{})
		if err != nil {
			return err
		}

		done := make(chan struct{})
		enc := json.NewEncoder(os.Stdout)
		p.ParseStreaming(src, parser.StreamCallbacks{
			OnBlock: func(b *blocks.Block) {
				_ = enc.Encode(b)
			},
			OnComplete: func(all []*blocks.Block, elapsed time.Duration) {
				fmt.Fprintf(os.Stderr, "emitted %d blocks in %s\n", len(all), elapsed)
				close(done)
			},
			OnError: func(err error) {
				fmt.Fprintf(os.Stderr, "stream error: %v\n", err)
			},
		})
		<-done
		return nil
	},
}
