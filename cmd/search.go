package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbr/ferritin-sub001/internal/markdown"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search across package documentation",
	Example: `  ferritin search "hash map"
  ferritin search --package tokio "spawn blocking"
  ferritin search --limit 5 deserialize`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

var (
	searchPackages []string
	searchLimit    int
)

func init() {
	searchCmd.Flags().StringSliceVar(&searchPackages, "package", nil, "restrict the search to these packages")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) {
	navigator, cfg, err := newNavigator()
	if err != nil {
		log.Fatalf("initializing engine: %v", err)
	}

	results, err := navigator.Search(context.Background(), args[0], searchPackages)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return
	}

	for _, r := range results {
		path := r.IDPath
		var snippet string
		if h, segments, err := navigator.GetItemFromIDPath(r.Package, r.IDPath); err == nil {
			path = strings.Join(segments, "::")
			snippet = markdown.PlainText(h.Docs(), 80)
		}
		fmt.Printf("%6.2f  %s", r.Score, path)
		if snippet != "" {
			fmt.Printf("  %s", snippet)
		}
		fmt.Println()
	}
}
