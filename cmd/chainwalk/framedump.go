package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chainwalk/internal/binformat"
)

func newFrameDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame-dump <blk-file>",
		Short: "Dump the magic/size framing of a raw block file without parsing block contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			offset := 0
			count := 0
			for offset < len(blob) {
				frame, ok := binformat.SplitFrame(blob[offset:])
				if !ok {
					fmt.Fprintf(out, "offset %d: no more frames (%d bytes remaining)\n", offset, len(blob)-offset)
					break
				}
				fmt.Fprintf(out, "offset %d\tmagic %x\tpayload %d bytes\n", offset, frame.Magic, frame.PayloadSize)
				offset += binformat.FrameHeaderSize + int(frame.PayloadSize)
				count++
			}
			fmt.Fprintf(out, "%d frames, %d bytes total\n", count, len(blob))
			return nil
		},
	}
	return cmd
}
