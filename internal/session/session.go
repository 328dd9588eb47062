// Package session runs the navigation engine on a dedicated worker, so
// interactive callers (a redraw loop, an editor plugin) never block on a
// resolve or a registry fetch. Caller and engine communicate over two
// unidirectional queues: commands in, responses out. The caller polls for
// responses and shows a pending indicator in between; at most one request
// is outstanding at a time.
package session

import (
	"context"
	"errors"

	"github.com/jbr/ferritin-sub001/internal/nav"
	"github.com/jbr/ferritin-sub001/internal/search"
	"github.com/jbr/ferritin-sub001/internal/source"
)

// Kind discriminates the request and response variants.
type Kind int

const (
	KindResolve Kind = iota
	KindSearch
	KindList
	KindGet
	KindToggle
	KindShutdown
)

// Request is one command for the engine worker. Fields beyond Kind are
// variant-specific and otherwise ignored.
type Request struct {
	Kind Kind

	// KindResolve
	Path string

	// KindSearch
	Query string
	Scope []string

	// KindGet
	Package string
	IDPath  string

	// KindToggle
	Option string
}

// Document is a rendered item ready for display.
type Document struct {
	Path       string
	Name       string
	Kind       string
	Signature  string
	Visibility string
	Docs       string
	Children   []string
}

// Response is the engine worker's answer to one request. Err carries
// resolution failures (including NotFoundError with suggestions); Ack is
// set only for the shutdown acknowledgement.
type Response struct {
	Kind Kind
	Err  error

	Doc      *Document
	Results  []search.Result
	Packages []source.PackageInfo
	// Options reflects the engine's option state after a toggle.
	Options map[string]bool
	Ack     bool
}

// ErrBusy is returned by Submit while a request is still in flight.
var ErrBusy = errors.New("engine busy: a request is already outstanding")

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("engine session closed")

// Session owns the engine worker and its two queues.
type Session struct {
	nav       *nav.Navigator
	requests  chan Request
	responses chan Response
	done      chan struct{}

	// options is touched only by the worker goroutine.
	options map[string]bool
}

// New starts the engine worker.
func New(navigator *nav.Navigator) *Session {
	s := &Session{
		nav:       navigator,
		requests:  make(chan Request, 1),
		responses: make(chan Response, 1),
		done:      make(chan struct{}),
		options:   make(map[string]bool),
	}
	go s.run()
	return s
}

// Submit enqueues one request without blocking. It fails with ErrBusy when
// the previous request has not been consumed yet, and ErrClosed after
// shutdown.
func (s *Session) Submit(req Request) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.requests <- req:
		return nil
	default:
		return ErrBusy
	}
}

// Poll returns the pending response without blocking. ok is false while
// the engine is still working.
func (s *Session) Poll() (Response, bool) {
	select {
	case resp := <-s.responses:
		return resp, true
	default:
		return Response{}, false
	}
}

// Close asks the worker to shut down and waits for the acknowledgement.
// Safe to call once; a response already in the queue is discarded.
func (s *Session) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	// Drain a stale response so the shutdown request can be answered.
	select {
	case <-s.responses:
	default:
	}
	s.requests <- Request{Kind: KindShutdown}
	for resp := range s.responses {
		if resp.Ack {
			break
		}
	}
}

func (s *Session) run() {
	defer close(s.responses)
	for req := range s.requests {
		if req.Kind == KindShutdown {
			close(s.done)
			s.responses <- Response{Kind: KindShutdown, Ack: true}
			return
		}
		s.responses <- s.handle(req)
	}
}

func (s *Session) handle(req Request) Response {
	resp := Response{Kind: req.Kind}
	switch req.Kind {
	case KindResolve:
		h, err := s.nav.ResolvePath(req.Path)
		if err != nil {
			resp.Err = err
			return resp
		}
		resp.Doc = s.render(h)
	case KindSearch:
		resp.Results, resp.Err = s.nav.Search(context.Background(), req.Query, req.Scope)
	case KindList:
		resp.Packages = s.nav.ListAvailablePackages()
	case KindGet:
		h, _, err := s.nav.GetItemFromIDPath(req.Package, req.IDPath)
		if err != nil {
			resp.Err = err
			return resp
		}
		resp.Doc = s.render(h)
	case KindToggle:
		s.options[req.Option] = !s.options[req.Option]
		opts := make(map[string]bool, len(s.options))
		for k, v := range s.options {
			opts[k] = v
		}
		resp.Options = opts
	default:
		resp.Err = errors.New("unknown request kind")
	}
	return resp
}

// OptionShowPrivate controls whether non-public children are listed.
const OptionShowPrivate = "show_private"

func (s *Session) render(h nav.ItemHandle) *Document {
	doc := &Document{
		Path:       h.Path(),
		Name:       h.Name(),
		Kind:       h.Kind(),
		Signature:  h.Signature(),
		Visibility: h.Visibility(),
		Docs:       h.Docs(),
	}
	for _, child := range h.Children() {
		if !s.options[OptionShowPrivate] && !publicVisibility(child.Visibility()) {
			continue
		}
		if name := child.Name(); name != "" {
			doc.Children = append(doc.Children, name)
		}
	}
	return doc
}

// publicVisibility reports whether a visibility tag denotes reachable API.
// Impl methods, trait items and enum variants carry "default" visibility
// while still being part of their parent's public surface.
func publicVisibility(v string) bool {
	return v == "public" || v == "default"
}
