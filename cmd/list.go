package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages with available documentation",
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	navigator, _, err := newNavigator()
	if err != nil {
		log.Fatalf("initializing engine: %v", err)
	}

	infos := navigator.ListAvailablePackages()
	if len(infos) == 0 {
		fmt.Println("no documentation available; run `cargo doc` or fetch a package")
		return
	}

	for _, info := range infos {
		name := info.Name
		if info.Version != "" {
			name += "@" + info.Version
		}
		var notes []string
		if info.Default {
			notes = append(notes, "default")
		}
		if info.DevOnly {
			notes = append(notes, "dev-only")
		}
		if len(info.Members) > 0 {
			notes = append(notes, "used by "+strings.Join(info.Members, ", "))
		}

		fmt.Printf("%-10s %s", info.Origin, name)
		if len(notes) > 0 {
			fmt.Printf("  (%s)", strings.Join(notes, "; "))
		}
		fmt.Println()
	}
}
