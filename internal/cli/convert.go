package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/genarena/codec"
	"github.com/hupe1980/genarena/snapshot"
)

func newConvertCmd() *cobra.Command {
	var codecName, compression string

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a snapshot with another codec or compression",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p := newProgress(logger)

			comp, err := snapshot.ParseCompression(compression)
			if err != nil {
				return err
			}

			a, in, err := readRawFile(args[0])
			if err != nil {
				return err
			}

			name := codecName
			if name == "" {
				name = in.Codec
			}
			c, ok := codec.ByName(name)
			if !ok || !isJSONCodec(name) {
				return fmt.Errorf("unsupported target codec %q (json, go-json)", name)
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			out, err := snapshot.Write(f, a, snapshot.WithCodec(c), snapshot.WithCompression(comp), snapshot.WithID(in.ID))
			if err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			p.done("converted", "from", in.Compression, "to", out.Compression)
			if out.Compression != comp {
				logger.Warn("payload did not compress, stored uncompressed", "requested", comp)
			}
			renderHeader(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", "", "target codec: json or go-json (default: keep)")
	cmd.Flags().StringVar(&compression, "compression", "none", "target compression: none, lz4 or zstd")
	return cmd
}
