// Package server implements the remote cache HTTP API on top of a
// storage.Location.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/metrics"
)

// ArtifactStore is the artifact facade the routes are served from.
// *storage.Location implements it.
type ArtifactStore interface {
	GetCachedArtifact(ctx context.Context, artifactID, teamID string) (io.ReadCloser, error)
	ExistsCachedArtifact(ctx context.Context, artifactID, teamID string) error
	CreateCachedArtifact(ctx context.Context, artifactID, teamID string, body io.Reader) error
}

// Options configures a Server.
type Options struct {
	// APIVersion prefixes every artifact route. Default "v8".
	APIVersion string
	// Tokens are the accepted bearer tokens.
	Tokens []string
	// BodyLimit caps upload size in bytes. Default 100 MiB.
	BodyLimit int64
	// Metrics, when set, is served on /metrics and records requests.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Server routes remote cache requests to an ArtifactStore.
type Server struct {
	store      ArtifactStore
	apiVersion string
	tokens     []string
	bodyLimit  int64
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	handler    http.Handler
}

// New builds the router for store.
func New(store ArtifactStore, opts Options) *Server {
	s := &Server{
		store:      store,
		apiVersion: opts.APIVersion,
		tokens:     opts.Tokens,
		bodyLimit:  opts.BodyLimit,
		metrics:    opts.Metrics,
		logger:     opts.Logger.With().Str("component", "server").Logger(),
	}
	if s.apiVersion == "" {
		s.apiVersion = constants.DefaultAPIVersion
	}
	if s.bodyLimit <= 0 {
		s.bodyLimit = constants.DefaultBodyLimit
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.Use(s.accessLog())

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/" + s.apiVersion).Subrouter()
	api.HandleFunc("/artifacts/status", s.makeHandler(s.getStatus)).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/artifacts/events", s.makeHandler(s.postEvents)).Methods(http.MethodPost)
	authed.HandleFunc("/artifacts/{hash}", s.makeHandler(s.getArtifact)).Methods(http.MethodGet)
	authed.HandleFunc("/artifacts/{hash}", s.makeHandler(s.headArtifact)).Methods(http.MethodHead)
	authed.HandleFunc("/artifacts/{hash}", s.makeHandler(s.putArtifact)).Methods(http.MethodPut)

	var h http.Handler = r
	h = requestID(h)
	h = hlog.NewHandler(s.logger)(h)
	return h
}

// makeHandler adapts an apiFunc to http.HandlerFunc.
func (s *Server) makeHandler(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if vars == nil {
			vars = map[string]string{}
		}
		if err := fn(r.Context(), w, r, vars); err != nil {
			writeError(w, r, err)
		}
	}
}

// ListenAndServe serves on addr until ctx is canceled, then drains in-flight
// requests for up to constants.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		// Uploads in flight during shutdown must be allowed to finish.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Addr formats a listen address for port on all interfaces.
func Addr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}
