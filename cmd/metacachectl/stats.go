package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/kestrelcache/metacache/pkg/store"
	"github.com/kestrelcache/metacache/pkg/types"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of cached rows per kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		storePath, _ := cmd.Flags().GetString("store")

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		defer s.Close()

		counts, err := s.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		kinds := make([]types.Kind, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		var total int64
		for _, kind := range kinds {
			count := counts[kind]
			fmt.Printf("%-20s %d\n", kind, count)
			total += count
		}
		fmt.Printf("%-20s %d\n", "total", total)
		return nil
	},
}
