package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/genarena/blobstore"
	"github.com/hupe1980/genarena/snapshot"
)

func newLsCmd() *cobra.Command {
	var src storeFlags

	cmd := &cobra.Command{
		Use:   "ls <name>",
		Short: "List the stored versions of an arena",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			blobs, err := src.open(ctx)
			if err != nil {
				return err
			}
			store := snapshot.NewStore(blobs)

			versions, err := store.Versions(ctx, args[0])
			if err != nil {
				return err
			}
			current, err := store.Current(ctx, args[0])
			if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
				return err
			}

			infos := make([]snapshot.Info, 0, len(versions))
			for _, v := range versions {
				info, err := store.Stat(ctx, args[0], v)
				if err != nil {
					loggerFromContext(ctx).Warn("unreadable snapshot", "version", v, "err", err)
					info = snapshot.Info{Name: args[0], Version: v}
				}
				infos = append(infos, info)
			}

			renderVersions(cmd.OutOrStdout(), infos, current)
			return nil
		},
	}

	src.register(cmd)
	return cmd
}

func newPruneCmd() *cobra.Command {
	var (
		src  storeFlags
		keep int
	)

	cmd := &cobra.Command{
		Use:   "prune <name>",
		Short: "Delete all but the newest versions of an arena",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			blobs, err := src.open(ctx)
			if err != nil {
				return err
			}
			store := snapshot.NewStore(blobs, snapshot.WithLogger(arenaLogger(logger)))

			removed, err := store.Prune(ctx, args[0], keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d versions of %s\n", removed, args[0])
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().IntVar(&keep, "keep", 3, "number of newest versions to keep")
	return cmd
}
