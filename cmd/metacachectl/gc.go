package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/store"
	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete rows that expired before now (or --older-than)",
	RunE: func(cmd *cobra.Command, args []string) error {
		storePath, _ := cmd.Flags().GetString("store")
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("gc: %w", err)
		}
		defer s.Close()

		cutoff := time.Now().Add(-olderThan).Unix()
		n, err := s.Prune(context.Background(), cutoff)
		if err != nil {
			return fmt.Errorf("gc: %w", err)
		}

		log.WithComponent("metacachectl").Info().Int64("rows_removed", n).Msg("gc complete")
		return nil
	},
}

func init() {
	gcCmd.Flags().Duration("older-than", 0, "only remove rows that expired at least this long ago")
}
