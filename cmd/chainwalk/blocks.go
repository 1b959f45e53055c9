package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"chainwalk"
	"chainwalk/internal/chain"
	"chainwalk/internal/checkpoint"
	"chainwalk/internal/scan"
	"chainwalk/internal/tail"
)

func newBlocksCmd() *cobra.Command {
	var startHeight, stopHeight int64
	var haveStart, haveStop bool
	var heightSafetyMargin int
	var checkpointDir, checkpointName string
	var pollInterval, pollTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Iterate the longest chain's blocks, one line per block",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := chainwalk.Config{
				DataDir:            flagDataDir,
				UseMmap:            flagMmap,
				Refresh:            flagRefresh,
				HeightSafetyMargin: heightSafetyMargin,
			}
			if haveStart || haveStop {
				r := &scan.Range{}
				if haveStart {
					r.Start = &startHeight
				}
				if haveStop {
					r.Stop = &stopHeight
				}
				cfg.Filter = &scan.Filter{Height: r}
			}

			blocks := chainwalk.Blocks(cfg)

			var store *checkpoint.Store
			if checkpointDir != "" {
				var err error
				store, err = checkpoint.Open(checkpointDir)
				if err != nil {
					return err
				}
				defer store.Close()

				var st scan.LongestChainState
				if err := store.Load(checkpointName, &st); err == nil {
					if err := blocks.Resume(st); err != nil {
						return fmt.Errorf("resuming from checkpoint %q: %w", checkpointName, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "resumed from checkpoint %q\n", checkpointName)
				}
			}

			var nexter interface {
				Next() (*chain.Block, error)
			} = blocks
			if pollInterval > 0 {
				opts := []tail.Option{tail.WithPollInterval(pollInterval)}
				if pollTimeout > 0 {
					opts = append(opts, tail.WithTimeout(pollTimeout))
				}
				nexter = tail.New[*chain.Block](blocks, opts...)
			}

			for {
				block, err := nexter.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				numTxs, _ := block.NumTxs()
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d txs\t%d bytes\n",
					block.Height(), block.BlockHash(), numTxs, block.RawSize())

				if store != nil {
					st, err := blocks.State()
					if err != nil {
						return err
					}
					if err := store.Save(checkpointName, &st); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&startHeight, "start-height", 0, "first height to include (inclusive)")
	cmd.Flags().Int64Var(&stopHeight, "stop-height", 0, "height to stop before (exclusive)")
	cmd.Flags().IntVar(&heightSafetyMargin, "height-safety-margin", 0, "fork lead required before committing to a chain (0: default)")
	cmd.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "badger directory to save/resume progress from")
	cmd.Flags().StringVar(&checkpointName, "checkpoint-name", "blocks", "checkpoint name within --checkpoint-dir")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "if set, don't stop at the current tip: poll this often for new blocks instead (without --refresh no new data is picked up)")
	cmd.Flags().DurationVar(&pollTimeout, "timeout", 0, "give up polling after this long with no new block (0: poll forever)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		haveStart = cmd.Flags().Changed("start-height")
		haveStop = cmd.Flags().Changed("stop-height")
		return nil
	}
	return cmd
}
