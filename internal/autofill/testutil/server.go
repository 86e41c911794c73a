package testutil

import (
	"log"
	"net/http"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// FixtureHost is the fake origin fixture pages are served from.
const FixtureHost = "http://autofill.test"

// FixtureServer answers hijacked browser requests with in-memory pages, so
// browser tests never touch the network.
type FixtureServer struct {
	// pages maps URL paths to HTML bodies
	pages map[string]string

	// verbose enables logging of matched/unmatched requests
	verbose bool
}

// FixtureServerOption configures a FixtureServer.
type FixtureServerOption func(*FixtureServer)

// WithVerbose enables verbose logging of request matching.
func WithVerbose(enabled bool) FixtureServerOption {
	return func(s *FixtureServer) {
		s.verbose = enabled
	}
}

// WithPage serves body at path.
func WithPage(path, body string) FixtureServerOption {
	return func(s *FixtureServer) {
		s.pages[path] = body
	}
}

// WithFixture serves the named fixture at /<name>.
func WithFixture(name string) FixtureServerOption {
	return func(s *FixtureServer) {
		s.pages["/"+name] = MustLoadFixture(name)
	}
}

func NewFixtureServer(opts ...FixtureServerOption) *FixtureServer {
	s := &FixtureServer{pages: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the address of the page served at path.
func (s *FixtureServer) URL(path string) string {
	return FixtureHost + path
}

// Middleware returns a Rod hijack handler that serves the registered pages.
// Use with router.MustAdd(testutil.FixtureHost+"/*", server.Middleware()).
func (s *FixtureServer) Middleware() func(*rod.Hijack) {
	return func(ctx *rod.Hijack) {
		reqURL := ctx.Request.URL().String()

		var path string
		if parsed, err := url.Parse(reqURL); err == nil {
			path = parsed.Path
		}

		body, found := s.pages[path]
		if !found {
			if s.verbose {
				log.Printf("[fixtures] no page for: %s", reqURL)
			}
			serve(ctx, http.StatusNotFound, "text/plain", "no fixture for "+path)
			return
		}

		if s.verbose {
			log.Printf("[fixtures] serving: %s", reqURL)
		}
		serve(ctx, http.StatusOK, "text/html; charset=utf-8", body)
	}
}

func serve(ctx *rod.Hijack, status int, contentType, body string) {
	payload := ctx.Response.Payload()
	payload.ResponseCode = status
	payload.ResponseHeaders = []*proto.FetchHeaderEntry{
		{Name: "Content-Type", Value: contentType},
	}
	payload.Body = []byte(body)
}
