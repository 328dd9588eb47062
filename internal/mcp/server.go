// Package mcp exposes the navigation engine over the Model Context
// Protocol: tools for path resolution, full-text search and package
// listing, and a resource template for reading rendered documentation.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/markdown"
	"github.com/jbr/ferritin-sub001/internal/nav"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *server.MCPServer
	nav       *nav.Navigator
	cfg       *config.Config
}

func NewServer(navigator *nav.Navigator, cfg *config.Config) *Server {
	s := &Server{nav: navigator, cfg: cfg}

	mcpServer := server.NewMCPServer(
		"ferritin",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("resolve_path",
			mcp.WithDescription("Resolve a Rust item path like \"tokio::sync::Mutex\" to its documentation. The leading segment may pin a version (\"serde@^1.0::Deserialize\"). On a miss, returns ranked \"did you mean\" suggestions."),
			mcp.WithString("path",
				mcp.Description("Item path, :: separated"),
				mcp.Required(),
			),
		),
		s.handleResolvePath,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_docs",
			mcp.WithDescription("Full-text search across package documentation. Returns URIs that can be read as resources. Use `packages` to filter; omit to search the workspace and standard library."),
			mcp.WithString("query",
				mcp.Description("Search query"),
				mcp.Required(),
			),
			mcp.WithArray("packages",
				mcp.Description("Optional list of package names to search within"),
				mcp.Items(map[string]interface{}{"type": "string"}),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 20)"),
			),
		),
		s.handleSearchDocs,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_packages",
			mcp.WithDescription("List packages with available documentation: workspace members and dependencies, the standard library, and cached registry fetches."),
		),
		s.handleListPackages,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"doc://{package}/{version}/{path}",
			"Rust documentation item",
			mcp.WithTemplateDescription("Read one documentation item as markdown. Search results and resolve_path return these URIs."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

type resolveResult struct {
	Found       bool         `json:"found"`
	URI         string       `json:"uri,omitempty"`
	Path        string       `json:"path,omitempty"`
	Kind        string       `json:"kind,omitempty"`
	Docs        string       `json:"docs,omitempty"`
	Suggestions []suggestion `json:"suggestions,omitempty"`
}

type suggestion struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

func (s *Server) handleResolvePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _ := req.GetArguments()["path"].(string)
	if path == "" {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	h, err := s.nav.ResolvePath(path)
	if err != nil {
		var nf *nav.NotFoundError
		if errors.As(err, &nf) {
			result := resolveResult{Found: false}
			for _, sg := range nf.Suggestions {
				result.Suggestions = append(result.Suggestions, suggestion{Path: sg.Path, Score: sg.Score})
			}
			out, _ := json.MarshalIndent(result, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("resolving %q: %v", path, err)), nil
	}

	result := resolveResult{
		Found: true,
		URI:   s.itemURI(h),
		Path:  h.Path(),
		Kind:  h.Kind(),
		Docs:  markdown.PlainText(h.Docs(), 400),
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

type searchResult struct {
	URI     string  `json:"uri"`
	Package string  `json:"package"`
	Path    string  `json:"path"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

func (s *Server) handleSearchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	var scope []string
	if pkgsRaw, ok := args["packages"]; ok {
		pkgsJSON, _ := json.Marshal(pkgsRaw)
		json.Unmarshal(pkgsJSON, &scope)
	}
	limit := s.cfg.Search.Limit
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	hits, err := s.nav.Search(ctx, query, scope)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]searchResult, 0, len(hits))
	for _, hit := range hits {
		r := searchResult{
			URI:     fmt.Sprintf("doc://%s/%s/%s", hit.Package, orLatest(hit.Version), hit.IDPath),
			Package: hit.Package,
			Score:   hit.Score,
		}
		if h, segments, err := s.nav.GetItemFromIDPath(hit.Package, hit.IDPath); err == nil {
			r.Path = strings.Join(segments, "::")
			r.Snippet = markdown.PlainText(h.Docs(), 200)
		}
		results = append(results, r)
	}

	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleListPackages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := s.nav.ListAvailablePackages()
	out, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// handleReadResource renders one item as markdown. The path component
// accepts either a :: item path or a colon-separated id path as returned
// by search.
func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	trimmed := strings.TrimPrefix(uri, "doc://")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}
	pkgName, version, path := parts[0], parts[1], parts[2]

	var h nav.ItemHandle
	var err error
	if isIDPath(path) {
		h, _, err = s.nav.GetItemFromIDPath(pkgName, path)
	} else {
		full := pkgName + "::" + path
		if version != "latest" && version != "" {
			full = pkgName + "@" + version + "::" + path
		}
		h, err = s.nav.ResolvePath(full)
	}
	if err != nil {
		return nil, fmt.Errorf("getting doc for %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     s.renderItem(h),
		},
	}, nil
}

// renderItem produces the markdown for one item: front matter identifying
// it, its prose with intra-doc links rewritten to doc:// URIs, and a
// listing of its children.
func (s *Server) renderItem(h nav.ItemHandle) string {
	docs := markdown.RewriteLinks(h.Docs(), func(dest string) (string, bool) {
		link := s.nav.ResolveLink(h, dest)
		if link.Kind != nav.LinkItem {
			return "", false
		}
		return s.itemURI(link.Item), true
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", h.Path())
	if sig := h.Signature(); sig != "" {
		fmt.Fprintf(&b, "```rust\n%s\n```\n\n", sig)
	}
	if docs != "" {
		b.WriteString(docs)
		b.WriteString("\n")
	}

	children := h.Children()
	if len(children) > 0 {
		b.WriteString("\n## Items\n\n")
		for _, child := range children {
			if name := child.Name(); name != "" {
				fmt.Fprintf(&b, "- [%s](%s) (%s)\n", name, s.itemURI(child), child.Kind())
			}
		}
	}

	return markdown.AddFrontMatter(b.String(), map[string]string{
		"kind":       h.Kind(),
		"package":    h.Package().Name,
		"version":    orLatest(h.Package().Version),
		"visibility": h.Visibility(),
	})
}

func (s *Server) itemURI(h nav.ItemHandle) string {
	pkg := h.Package()
	path := strings.TrimPrefix(h.Path(), pkg.Name+"::")
	if path == pkg.Name {
		path = ""
	}
	return fmt.Sprintf("doc://%s/%s/%s", pkg.Name, orLatest(pkg.Version), path)
}

func orLatest(version string) string {
	if version == "" {
		return "latest"
	}
	return version
}

// isIDPath reports whether a resource path is a colon-separated numeric
// id path rather than an item path.
func isIDPath(path string) bool {
	if strings.Contains(path, "::") {
		return false
	}
	for _, r := range path {
		if (r < '0' || r > '9') && r != ':' {
			return false
		}
	}
	return path != ""
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}
