package search

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/source"
)

// Result is one ranked item from a cross-package query.
type Result struct {
	Package string
	Version string
	IDPath  string
	Score   float64
}

// Run queries each package independently and merges into one globally
// ranked list. Identical ranking constants across packages make the scores
// directly comparable, so the merge is a single sort: score descending,
// ties by package name then id path. One package's index failure is logged
// and skipped, never fatal to the query.
func Run(ctx context.Context, pkgs []*source.Package, query string) ([]Result, error) {
	cacheDir := config.IndexCacheDir()

	var (
		mu      sync.Mutex
		results []Result
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := LoadOrBuild(pkg, cacheDir)
			if err != nil {
				slog.Warn("index build failed, skipping package",
					"package", pkg.Name, "version", pkg.Version, "error", err)
				return nil
			}
			hits := idx.Query(query)
			mu.Lock()
			for _, h := range hits {
				results = append(results, Result{
					Package: pkg.Name,
					Version: pkg.Version,
					IDPath:  h.IDPath,
					Score:   h.Score,
				})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Package != results[j].Package {
			return results[i].Package < results[j].Package
		}
		return results[i].IDPath < results[j].IDPath
	})
	return results, nil
}
