package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elonfeng/paperadar/internal/store"
	"github.com/elonfeng/paperadar/pkg/catalog"
	"github.com/elonfeng/paperadar/pkg/paper"
	"github.com/elonfeng/paperadar/pkg/trend"
)

// Server provides the HTTP API.
type Server struct {
	store   store.Store
	scorer  *trend.Scorer
	sources []catalog.Source
	port    int
}

// New creates a new HTTP server.
func New(s store.Store, scorer *trend.Scorer, sources []catalog.Source, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:   s,
		scorer:  scorer,
		sources: sources,
		port:    port,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/papers", s.handlePapers)
	mux.HandleFunc("/api/v1/ranking", s.handleRanking)
	mux.HandleFunc("/api/v1/picks", s.handlePicks)
	mux.HandleFunc("/api/v1/collect", s.handleCollect)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("paperadar server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.routes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.ListOpts{Limit: 100}
	if src := r.URL.Query().Get("source"); src != "" {
		opts.Source = catalog.SourceType(src)
	}
	if since := r.URL.Query().Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			opts.Since = t
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	recs, err := s.store.ListPapers(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  recs,
		"count": len(recs),
	})
}

// handleRanking scores the papers fetched over the last day and returns
// the ordered candidates with full breakdowns. Breakdowns are computed
// per request, never read from storage.
func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	recs, err := s.store.ListPapers(r.Context(), store.ListOpts{
		Since: time.Now().UTC().Add(-24 * time.Hour),
		Limit: 200,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ranking, err := s.scorer.Rank(recs)
	if err != nil {
		if errors.Is(err, trend.ErrNoCandidates) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no papers fetched in the last 24h"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	cands := ranking.Candidates
	if len(cands) > limit {
		cands = cands[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":     cands,
		"count":    len(cands),
		"fallback": ranking.Fallback,
	})
}

func (s *Server) handlePicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	picks, err := s.store.ListPicks(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  picks,
		"count": len(picks),
	})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	ctx := r.Context()
	results := make(map[string]int)
	skipped := 0
	var errs []string

	for _, src := range s.sources {
		raws, err := src.Fetch(ctx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		recs, normErrs := paper.NormalizeAll(raws)
		skipped += len(normErrs)
		if err := s.store.UpsertPapers(ctx, recs); err != nil {
			errs = append(errs, fmt.Sprintf("%s store: %v", src.Name(), err))
			continue
		}
		results[string(src.Name())] = len(recs)
	}

	resp := map[string]any{
		"collected": results,
		"skipped":   skipped,
	}
	if len(errs) > 0 {
		resp["errors"] = errs
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
