package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Belphemur/Subtirrent/internal/services"
)

// Options configures the HTTP addon server.
type Options struct {
	Pipeline services.Pipeline
	Streams  services.StreamFinder
	Version  string
	// DefaultAPIKey is used when a user configuration carries no debrid key.
	DefaultAPIKey string
	// PreferredLanguages applies when a user configuration lists none.
	PreferredLanguages []string
}

// Server serves the addon HTTP surface.
type Server struct {
	router             *mux.Router
	handler            http.Handler
	pipeline           services.Pipeline
	streams            services.StreamFinder
	version            string
	defaultAPIKey      string
	preferredLanguages []string
	startedAt          time.Time
}

// New creates the server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		router:             mux.NewRouter().UseEncodedPath(),
		pipeline:           opts.Pipeline,
		streams:            opts.Streams,
		version:            opts.Version,
		defaultAPIKey:      opts.DefaultAPIKey,
		preferredLanguages: opts.PreferredLanguages,
		startedAt:          time.Now(),
	}
	s.routes()
	// CORS wraps the router so that preflight requests and errors for unknown routes
	// carry the headers too.
	s.handler = corsMiddleware(s.router)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// NewHTTPServer wraps handler in an http.Server listening on address:port.
// No write timeout is set because subtitle extraction responses are streamed.
func NewHTTPServer(address string, port int, handler http.Handler) *http.Server {
	if port == 0 {
		port = 7000
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
