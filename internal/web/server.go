// Package web serves a read-only JSON view of the directory for inspecting
// the cache and match statistics while a run is underway.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/db"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/pipeline"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// Server exposes the inspection API.
type Server struct {
	store      *db.Store
	cache      *pipeline.Cache
	httpServer *http.Server
	log        *zap.Logger
}

func NewServer(addr string, store *db.Store, cache *pipeline.Cache, log *zap.Logger) *Server {
	s := &Server{store: store, cache: cache, log: log}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/schools", s.handleSchools).Methods(http.MethodGet)
	api.HandleFunc("/districts", s.handleDistricts).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Run serves until the process is interrupted, then shuts down gracefully.
func (s *Server) Run() error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("inspection api listening", zap.String("addr", s.httpServer.Addr))
		errc <- s.httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		s.log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSchools(w http.ResponseWriter, _ *http.Request) {
	out := make([]map[string]any, 0, len(s.cache.Schools))
	for _, sc := range s.cache.Schools {
		out = append(out, schoolJSON(sc))
	}
	writeJSON(w, out)
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	type district struct {
		ID         int     `json:"id"`
		Name       *string `json:"name"`
		WebsiteURL *string `json:"website_url"`
		Schools    int     `json:"schools"`
	}
	bySize := make(map[int]int)
	for _, sc := range s.cache.Schools {
		bySize[sc.DistrictID]++
	}
	out := make([]district, 0)
	for _, d := range s.cache.Districts() {
		out = append(out, district{
			ID: d.ID, Name: d.Name, WebsiteURL: d.WebsiteURL,
			Schools: bySize[d.ID],
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.store.LoadStats()
	if err != nil {
		s.log.Error("loading stats", zap.Error(err))
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func schoolJSON(sc *school.School) map[string]any {
	out := map[string]any{
		"id":          sc.ID,
		"district_id": sc.DistrictID,
	}
	for _, a := range school.Attributes() {
		v := sc.Get(a)
		if v.Null {
			continue
		}
		switch v.Kind {
		case school.KindInt:
			out[a.Name] = v.Int
		case school.KindDouble:
			out[a.Name] = v.Float
		case school.KindBool:
			out[a.Name] = v.Bool
		case school.KindDate:
			out[a.Name] = v.Time.Format("2006-01-02")
		default:
			out[a.Name] = v.Str
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
