package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/cobra"

	"chainwalk"
	"chainwalk/internal/chain"
	"chainwalk/internal/tail"
	"chainwalk/internal/utxo"
)

func newTxsCmd() *cobra.Command {
	var trackSpending bool
	var prefixBytes int
	var pollInterval, pollTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "txs",
		Short: "Iterate the longest chain's transactions, one line per tx",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := chainwalk.Config{
				DataDir:             flagDataDir,
				UseMmap:             flagMmap,
				Refresh:             flagRefresh,
				IncludeBlockContext: true,
				TrackSpending:       trackSpending,
				UTXOConfig:          utxo.Config{PrefixBytes: prefixBytes},
			}
			stream := chainwalk.Txs(cfg)

			var nexter interface {
				Next() (*chain.TxInBlock, error)
			} = stream
			if pollInterval > 0 {
				opts := []tail.Option{tail.WithPollInterval(pollInterval)}
				if pollTimeout > 0 {
					opts = append(opts, tail.WithTimeout(pollTimeout))
				}
				nexter = tail.New[*chain.TxInBlock](stream, opts...)
			}

			for {
				tx, err := nexter.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%s\t%d in\t%d out\t%s",
					tx.Txid, len(tx.Inputs), len(tx.Outputs),
					btcutil.Amount(tx.TotalOutputValue()))
				if fee, ok := tx.Fee(); ok {
					line += fmt.Sprintf("\tfee=%s", btcutil.Amount(fee))
				}
				if tx.Block != nil {
					line += fmt.Sprintf("\tblock=%d", tx.Block.Height())
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&trackSpending, "track-spending", false, "resolve inputs against an in-memory UTXO index (adds fee reporting, uses a lot of memory for a full scan)")
	cmd.Flags().IntVar(&prefixBytes, "utxo-key-bytes", 8, "txid bytes used as the UTXO index key: 8 (default) or 32")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "if set, don't stop at the current tip: poll this often for new transactions instead (without --refresh no new data is picked up)")
	cmd.Flags().DurationVar(&pollTimeout, "timeout", 0, "give up polling after this long with no new transaction (0: poll forever)")
	return cmd
}
