// Package api serves the parsed schedule over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/coursegrid/coursegrid"
	"github.com/coursegrid/coursegrid/store"
)

// SectionSource is the slice of the store the handlers need.
type SectionSource interface {
	List(ctx context.Context, f store.Filter) ([]coursegrid.Section, error)
	Get(ctx context.Context, id int) (coursegrid.Section, error)
}

type Server struct {
	sections SectionSource
	log      *slog.Logger
}

func NewServer(sections SectionSource, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{sections: sections, log: log}
}

// Router builds the chi router with logging, panic recovery and a
// permissive CORS policy for the web frontend.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/sections", s.handleListSections)
	r.Get("/sections/{id}", s.handleGetSection)

	return r
}

var (
	daysOffPattern = regexp.MustCompile(`^[MTWRF]{1,5}$`)
	clockPattern   = regexp.MustCompile(`^\d{4}$`)
)

// parseFilter maps query parameters onto a store filter. An invalid
// parameter rejects the whole request rather than silently widening it.
func parseFilter(q map[string][]string) (store.Filter, error) {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	f := store.Filter{
		Q:       get("q"),
		Course:  get("course"),
		Domain:  get("domain"),
		Code:    get("code"),
		Title:   get("title"),
		Teacher: get("teacher"),
	}

	for key, dst := range map[string]*bool{"blended": &f.Blended, "honours": &f.Honours} {
		switch v := get(key); v {
		case "", "false", "0":
		case "true", "1":
			*dst = true
		default:
			return store.Filter{}, fmt.Errorf("invalid %s: %q", key, v)
		}
	}

	for key, dst := range map[string]**float64{
		"min_rating": &f.MinRating,
		"max_rating": &f.MaxRating,
		"min_score":  &f.MinScore,
		"max_score":  &f.MaxScore,
	} {
		v := get(key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid %s: %q", key, v)
		}
		*dst = &n
	}

	if v := get("days_off"); v != "" {
		if !daysOffPattern.MatchString(v) {
			return store.Filter{}, fmt.Errorf("invalid days_off: %q", v)
		}
		f.DaysOff = v
	}

	for key, dst := range map[string]*int{"time_start": &f.TimeStart, "time_end": &f.TimeEnd} {
		v := get(key)
		if v == "" {
			continue
		}
		if !clockPattern.MatchString(v) {
			return store.Filter{}, fmt.Errorf("invalid %s: %q", key, v)
		}
		*dst, _ = strconv.Atoi(v)
	}

	return f, nil
}

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sections, err := s.sections.List(r.Context(), f)
	if err != nil {
		s.log.Error("section listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sections")
		return
	}

	matched := make([]coursegrid.Section, 0, len(sections))
	for _, sec := range sections {
		if f.MatchesSchedule(sec) {
			matched = append(matched, sec)
		}
	}

	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	sec, err := s.sections.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "section not found")
		return
	}
	if err != nil {
		s.log.Error("section lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get section")
		return
	}

	writeJSON(w, http.StatusOK, sec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
