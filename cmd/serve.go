package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lookup API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv("serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *env) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/lookup", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			model.HotelQuery
			SkipCache bool `json:"skip_cache"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		rec, err := env.orch.Lookup(req.Context(), body.HotelQuery, body.SkipCache)
		if err != nil {
			if eris.Is(err, model.ErrEmptyName) {
				writeError(w, http.StatusBadRequest, "name is required")
				return
			}
			zap.L().Error("lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Post("/lookup/batch", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Hotels         []model.HotelQuery `json:"hotels"`
			MaxConcurrency int                `json:"max_concurrency"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(body.Hotels) == 0 {
			writeError(w, http.StatusBadRequest, "hotels is required")
			return
		}
		if max := cfg.Batch.MaxConcurrency * 4; len(body.Hotels) > max {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d hotels per request", max))
			return
		}

		started := time.Now()
		results, err := env.batch.RunWithConcurrency(req.Context(), body.Hotels, body.MaxConcurrency)
		if err != nil {
			zap.L().Error("batch failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "batch failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"results":    results,
			"elapsed_ms": time.Since(started).Milliseconds(),
		})
	})

	r.Get("/cache/stats", func(w http.ResponseWriter, req *http.Request) {
		stats := env.store.Stats(req.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"entries":  stats.Entries,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate(),
		})
	})

	r.Delete("/cache", func(w http.ResponseWriter, req *http.Request) {
		pattern := req.URL.Query().Get("pattern")
		if pattern == "" {
			writeError(w, http.StatusBadRequest, "pattern is required")
			return
		}
		removed := env.store.Invalidate(req.Context(), pattern)
		writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
