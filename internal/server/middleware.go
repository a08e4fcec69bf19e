package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/mrz1836/turbocache/internal/constants"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// requestID reuses a client supplied X-Request-Id or generates one, echoes it
// in the response and adds it to the request logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, id)

		logger := hlog.FromRequest(r)
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

// accessLog logs one line per request and feeds the request counter.
func (s *Server) accessLog() func(http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, status)
		}

		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("url", r.URL.RequestURI()).
			Str("route", route).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request completed")
	})
}

// authenticate accepts "Authorization: Bearer <token>" for any configured
// token. A missing header is a bad request; an unknown token is unauthorized.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.Join(r.Header.Values("Authorization"), ",")
		if header == "" {
			writeError(w, r, tcerrors.ErrMissingAuthorization)
			return
		}

		token, _ := strings.CutPrefix(header, "Bearer ")
		if !s.validToken(token) {
			writeError(w, r, tcerrors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(token string) bool {
	if token == "" {
		return false
	}
	ok := false
	for _, t := range s.tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			ok = true
		}
	}
	return ok
}
