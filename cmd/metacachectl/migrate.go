package main

import (
	"fmt"

	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the cache schema to the database, creating it if necessary",
	RunE: func(cmd *cobra.Command, args []string) error {
		storePath, _ := cmd.Flags().GetString("store")

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer s.Close()

		log.WithComponent("metacachectl").Info().Str("store", storePath).Msg("schema applied")
		return nil
	},
}
