package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chainwalk/internal/checkpoint"
	"chainwalk/internal/scan"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect or remove saved scan checkpoints",
	}
	cmd.AddCommand(newCheckpointShowCmd(), newCheckpointDeleteCmd())
	return cmd
}

func newCheckpointShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <checkpoint-dir> <name>",
		Short: "Print the last-seen block hash and fork-tree node count saved in a checkpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := checkpoint.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			var st scan.LongestChainState
			if err := store.Load(args[1], &st); err != nil {
				return fmt.Errorf("checkpoint %q not found: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checkpoint %q: last block %s, %d known fork nodes\n",
				args[1], st.LastHash, len(st.Nodes))
			return nil
		},
	}
	return cmd
}

func newCheckpointDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <checkpoint-dir> <name>",
		Short: "Delete a saved checkpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := checkpoint.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted checkpoint %q\n", args[1])
			return nil
		},
	}
	return cmd
}
