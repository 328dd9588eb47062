package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbr/ferritin-sub001/internal/markdown"
	"github.com/jbr/ferritin-sub001/internal/nav"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Resolve an item path and print its documentation",
	Example: `  ferritin resolve tokio::sync::Mutex
  ferritin resolve serde@^1.0::Deserialize
  ferritin resolve Foo`,
	Args: cobra.ExactArgs(1),
	Run:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) {
	navigator, _, err := newNavigator()
	if err != nil {
		log.Fatalf("initializing engine: %v", err)
	}

	h, err := navigator.ResolvePath(args[0])
	if err != nil {
		var nf *nav.NotFoundError
		if errors.As(err, &nf) {
			fmt.Printf("%q not found\n", args[0])
			if len(nf.Suggestions) > 0 {
				fmt.Println("did you mean:")
				for _, s := range nf.Suggestions {
					fmt.Printf("  %s\n", s.Path)
				}
			}
			return
		}
		log.Fatalf("resolving %q: %v", args[0], err)
	}

	printItem(h)
}

func printItem(h nav.ItemHandle) {
	fmt.Printf("%s (%s", h.Path(), h.Kind())
	if vis := h.Visibility(); vis != "" && vis != "public" {
		fmt.Printf(", %s", vis)
	}
	fmt.Println(")")

	if sig := h.Signature(); sig != "" {
		fmt.Println()
		fmt.Println("  " + sig)
	}

	if docs := strings.TrimSpace(h.Docs()); docs != "" {
		fmt.Println()
		fmt.Println(docs)
	}

	children := h.Children()
	if len(children) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("items:")
	for _, child := range children {
		name := child.Name()
		if name == "" {
			continue
		}
		line := fmt.Sprintf("  %-12s %s", child.Kind(), name)
		if snippet := markdown.PlainText(child.Docs(), 60); snippet != "" {
			line += "  " + snippet
		}
		fmt.Println(line)
	}
}
