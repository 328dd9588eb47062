package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbr/ferritin-sub001/internal/config"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete cached registry bundles and search indexes",
	Run:   runClearCache,
}

func runClearCache(cmd *cobra.Command, args []string) {
	failed := false
	for _, dir := range []string{config.BundleCacheDir(), config.IndexCacheDir()} {
		if err := os.RemoveAll(dir); err != nil {
			slog.Error("failed to clear cache", "dir", dir, "error", err)
			failed = true
			continue
		}
		fmt.Printf("cleared %s\n", dir)
	}
	if failed {
		os.Exit(1)
	}
}
