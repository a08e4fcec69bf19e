package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/mrz1836/turbocache/internal/constants"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// apiFunc is the signature of every route handler. A returned error is
// written as a JSON error response.
type apiFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error

type putResponse struct {
	URLs []string `json:"urls"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// teamID returns the teamId query parameter, falling back to slug.
func teamID(r *http.Request) (string, error) {
	q := r.URL.Query()
	if team := q.Get("teamId"); team != "" {
		return team, nil
	}
	if slug := q.Get("slug"); slug != "" {
		return slug, nil
	}
	return "", tcerrors.ErrMissingTeam
}

func (s *Server) getArtifact(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error {
	team, err := teamID(r)
	if err != nil {
		return err
	}

	rc, err := s.store.GetCachedArtifact(ctx, vars["hash"], team)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	// Readers may open lazily; surface open errors before committing to 200.
	br := bufio.NewReader(rc)
	if _, err := br.Peek(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read artifact %s/%s: %w", team, vars["hash"], err)
	}

	w.Header().Set("Content-Type", constants.ArtifactContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, br); err != nil {
		// Headers are sent; the client sees a truncated body.
		hlog.FromRequest(r).Warn().Err(err).Msg("artifact stream interrupted")
	}
	return nil
}

func (s *Server) headArtifact(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error {
	team, err := teamID(r)
	if err != nil {
		return err
	}
	if err := s.store.ExistsCachedArtifact(ctx, vars["hash"], team); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) putArtifact(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error {
	team, err := teamID(r)
	if err != nil {
		return err
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != constants.ArtifactContentType {
		return fmt.Errorf("%w: %q", tcerrors.ErrUnsupportedMediaType, r.Header.Get("Content-Type"))
	}

	if r.ContentLength > s.bodyLimit {
		return &http.MaxBytesError{Limit: s.bodyLimit}
	}
	body := http.MaxBytesReader(w, r.Body, s.bodyLimit)

	hash := vars["hash"]
	if err := s.store.CreateCachedArtifact(ctx, hash, team, body); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, putResponse{URLs: []string{team + "/" + hash}})
	return nil
}

// postEvents accepts cache usage events. They are not recorded.
func (s *Server) postEvents(_ context.Context, w http.ResponseWriter, r *http.Request, _ map[string]string) error {
	_, _ = io.Copy(io.Discard, http.MaxBytesReader(w, r.Body, s.bodyLimit))
	w.WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) getStatus(_ context.Context, w http.ResponseWriter, _ *http.Request, _ map[string]string) error {
	writeJSON(w, http.StatusOK, statusResponse{Status: "enabled"})
	return nil
}

// notFound mirrors the error body of matched routes for unknown paths.
func notFound(w http.ResponseWriter, r *http.Request) {
	code := http.StatusNotFound
	writeJSON(w, code, errorResponse{
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    "Route " + r.Method + ":" + r.URL.Path + " not found",
	})
}

