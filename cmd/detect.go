package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samsaffron/chatblocks/internal/detect"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Print the detected input format",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}
		fmt.Println(detect.Detect(raw))
		return nil
	},
}
