package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/resource"
	"github.com/hupe1980/genarena/snapshot"
)

func newVerifyCmd() *cobra.Command {
	var (
		src         storeFlags
		ver         uint64
		memoryLimit string
	)

	cmd := &cobra.Command{
		Use:   "verify <file> | verify --dir DIR <name>",
		Short: "Decode a snapshot and print its slot usage",
		Long: `Verify checks the header, checksum and free-list structure of a snapshot.

With --dir or --s3-bucket the argument is an arena name in a snapshot store
and the current version (or --version) is verified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			p := newProgress(logger)

			var (
				a   *rawArena
				h   snapshot.Header
				err error
			)
			if src.isSet() {
				var limit uint64
				if memoryLimit != "" {
					if limit, err = humanize.ParseBytes(memoryLimit); err != nil {
						return fmt.Errorf("invalid --memory-limit: %w", err)
					}
				}
				rc := resource.NewController(resource.Config{MemoryLimitBytes: int64(limit)}) //nolint:gosec // parsed sizes fit int64

				blobs, err := src.open(ctx)
				if err != nil {
					return err
				}
				store := snapshot.NewStore(blobs, snapshot.WithLogger(arenaLogger(logger)), snapshot.WithController(rc))

				var info snapshot.Info
				if ver == 0 {
					a, info, err = snapshot.Load[gojson.RawMessage](ctx, store, args[0])
				} else {
					a, info, err = snapshot.LoadVersion[gojson.RawMessage](ctx, store, args[0], ver)
				}
				h = info.Header
				if err != nil {
					return explainCodec(h, err)
				}
			} else {
				a, h, err = readRawFile(args[0])
				if err != nil {
					return err
				}
			}

			if err := a.Validate(); err != nil {
				return err
			}
			p.done("verified", "codec", h.Codec, "slots", h.Slots)

			renderStats(cmd.OutOrStdout(), a.Stats())
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().Uint64Var(&ver, "version", 0, "version to verify (default: current)")
	cmd.Flags().StringVar(&memoryLimit, "memory-limit", "", "cap on decode buffers, e.g. 256MiB")
	return cmd
}

func explainCodec(h snapshot.Header, err error) error {
	if h.Codec != "" && !isJSONCodec(h.Codec) && errors.Is(err, genarena.ErrDecode) {
		return fmt.Errorf("codec %q cannot be decoded without its value type: %w", h.Codec, err)
	}
	return err
}
