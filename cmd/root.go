package cmd

import (
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/nav"
	"github.com/jbr/ferritin-sub001/internal/source"
)

var offline bool

var rootCmd = &cobra.Command{
	Use:   "ferritin",
	Short: "Rust documentation navigation and search MCP server",
	Run:   runMCP,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "disable the docs.rs registry source")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newNavigator assembles the engine: the local workspace, the installed
// standard library, and (unless offline) the docs.rs registry. A source
// that fails to initialize is logged and skipped; the engine degrades to
// whatever remains.
func newNavigator() (*nav.Navigator, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var sources []source.Source

	cwd, err := os.Getwd()
	if err == nil {
		if local, err := source.NewLocal(cwd); err != nil {
			warnUnavailable(err)
		} else {
			sources = append(sources, local)
		}
	}

	if std, err := source.NewStd(); err != nil {
		warnUnavailable(err)
	} else {
		sources = append(sources, std)
	}

	if !offline {
		sources = append(sources, source.NewRegistry(cfg.Registry, config.BundleCacheDir()))
	}

	return nav.New(cfg.Nav, sources...), cfg, nil
}

func warnUnavailable(err error) {
	var unavailable *source.UnavailableError
	if errors.As(err, &unavailable) {
		slog.Warn("documentation source unavailable", "source", unavailable.Origin, "error", unavailable.Err)
		return
	}
	slog.Warn("documentation source unavailable", "error", err)
}
