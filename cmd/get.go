package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <doc://package/version/path>",
	Short: "Read a documentation item by URI",
	Example: `  ferritin get doc://serde/latest/Serialize
  ferritin get doc://tokio/1.47.1/0:256:1024
  ferritin get serde/latest/Serialize`,
	Args: cobra.ExactArgs(1),
	Run:  runGet,
}

func runGet(cmd *cobra.Command, args []string) {
	uri := strings.TrimPrefix(args[0], "doc://")
	parts := strings.SplitN(uri, "/", 3)
	if len(parts) < 3 {
		log.Fatalf("invalid URI %q: want doc://package/version/path", args[0])
	}
	pkgName, version, path := parts[0], parts[1], parts[2]

	navigator, _, err := newNavigator()
	if err != nil {
		log.Fatalf("initializing engine: %v", err)
	}

	if isIDPath(path) {
		h, segments, err := navigator.GetItemFromIDPath(pkgName, path)
		if err != nil {
			log.Fatalf("getting %s: %v", args[0], err)
		}
		fmt.Printf("// %s\n", strings.Join(segments, "::"))
		printItem(h)
		return
	}

	full := pkgName + "::" + path
	if version != "" && version != "latest" {
		full = pkgName + "@" + version + "::" + path
	}
	h, err := navigator.ResolvePath(full)
	if err != nil {
		log.Fatalf("getting %s: %v", args[0], err)
	}
	printItem(h)
}

// isIDPath reports whether the path component is a colon-separated id path
// from a search result rather than an item path.
func isIDPath(path string) bool {
	if path == "" || strings.Contains(path, "::") {
		return false
	}
	for _, r := range path {
		if (r < '0' || r > '9') && r != ':' {
			return false
		}
	}
	return true
}
