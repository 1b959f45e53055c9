// Command chainwalk is a CLI front end for the chainwalk scanning
// pipeline: walking the longest chain, flattening it into transactions,
// dumping a raw block file's framing, and managing saved checkpoints.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chainwalk/internal/logging"
)

var (
	flagDataDir  string
	flagMmap     bool
	flagRefresh  bool
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "chainwalk",
		Short: "Read and iterate a Bitcoin node's raw block files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(flagLogLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
			}
			logging.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagDataDir, "datadir", ".", "directory containing blk*.dat files")
	root.PersistentFlags().BoolVar(&flagMmap, "mmap", false, "memory-map block files instead of reading them whole")
	root.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "at end of data, rescan for new block files and re-read the current file's unwritten tail once before stopping")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "debug, info, warn, or error")

	root.AddCommand(newBlocksCmd())
	root.AddCommand(newTxsCmd())
	root.AddCommand(newFrameDumpCmd())
	root.AddCommand(newCheckpointCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chainwalk:", err)
		os.Exit(1)
	}
}
