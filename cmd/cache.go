package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/ljos/budzilla/internal/config"
	"github.com/ljos/budzilla/internal/httpcache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the HTTP response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show response cache size and entry counts",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired responses",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached response",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*httpcache.Store, error) {
	path, err := config.ResponseCachePath()
	if err != nil {
		return nil, err
	}
	store, err := httpcache.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open response cache: %w", err)
	}
	return store, nil
}

func runCacheStats(_ *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats()
	if err != nil {
		return err
	}
	return renderTable(os.Stdout, []string{"cache", "value"}, [][]string{
		{"path", store.Path()},
		{"live", strconv.Itoa(st.Live)},
		{"expired", strconv.Itoa(st.Expired)},
		{"size", formatBytes(st.Bytes)},
	})
}

func runCachePrune(_ *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Prune()
	if err != nil {
		return err
	}
	printOK(fmt.Sprintf("pruned %d expired response(s)", n))
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear()
	if err != nil {
		return err
	}
	printOK(fmt.Sprintf("removed %d response(s)", n))
	return nil
}

func formatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}
