package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbr/ferritin-sub001/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive prompt backed by the engine worker",
	Long: `Run an interactive prompt. The engine runs on its own worker, so a slow
registry fetch shows a pending indicator instead of freezing the prompt.

Commands:
  <path>              resolve an item path
  /search <query>     full-text search
  /list               list available packages
  /private            toggle showing non-public items
  /quit               exit`,
	Run: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) {
	navigator, _, err := newNavigator()
	if err != nil {
		log.Fatalf("initializing engine: %v", err)
	}

	sess := session.New(navigator)
	defer sess.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req session.Request
		switch {
		case line == "/quit" || line == "/q":
			return
		case line == "/list":
			req = session.Request{Kind: session.KindList}
		case line == "/private":
			req = session.Request{Kind: session.KindToggle, Option: session.OptionShowPrivate}
		case strings.HasPrefix(line, "/search "):
			req = session.Request{Kind: session.KindSearch, Query: strings.TrimPrefix(line, "/search ")}
		case strings.HasPrefix(line, "/"):
			fmt.Printf("unknown command %q\n", line)
			continue
		default:
			req = session.Request{Kind: session.KindResolve, Path: line}
		}

		if err := sess.Submit(req); err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResponse(poll(sess))
	}
}

// poll waits for the worker's answer the way an interactive frontend
// would: checking each tick and showing a pending indicator in between.
func poll(sess *session.Session) session.Response {
	ticks := 0
	for {
		if resp, ok := sess.Poll(); ok {
			if ticks > 0 {
				fmt.Print("\r \r")
			}
			return resp
		}
		ticks++
		if ticks%10 == 0 {
			fmt.Print("\r" + spinner(ticks/10))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func spinner(n int) string {
	return []string{"|", "/", "-", `\`}[n%4]
}

func printResponse(resp session.Response) {
	if resp.Err != nil {
		fmt.Printf("error: %v\n", resp.Err)
		return
	}
	switch resp.Kind {
	case session.KindResolve, session.KindGet:
		doc := resp.Doc
		fmt.Printf("%s (%s)\n", doc.Path, doc.Kind)
		if doc.Docs != "" {
			fmt.Println(doc.Docs)
		}
		for _, child := range doc.Children {
			fmt.Printf("  %s\n", child)
		}
	case session.KindSearch:
		if len(resp.Results) == 0 {
			fmt.Println("no results")
			return
		}
		for _, r := range resp.Results {
			fmt.Printf("%6.2f  %s %s\n", r.Score, r.Package, r.IDPath)
		}
	case session.KindList:
		for _, info := range resp.Packages {
			fmt.Printf("%-10s %s\n", info.Origin, info.Name)
		}
	case session.KindToggle:
		fmt.Printf("show_private = %v\n", resp.Options[session.OptionShowPrivate])
	}
}
