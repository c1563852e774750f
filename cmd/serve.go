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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/audience"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Periodic batch-ingestion sweep over all clients.
		go runSweepLoop(ctx, env)

		r := newRouter(ctx, env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func runSweepLoop(ctx context.Context, env *appEnv) {
	interval := time.Duration(cfg.Sweep.IntervalHours) * time.Hour
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			zap.L().Info("starting scheduled ingestion sweep")
			if err := env.Ingestor.SweepAll(ctx, cfg.Sweep.MaxConcurrentClients); err != nil {
				zap.L().Error("scheduled sweep failed", zap.Error(err))
			}
		}
	}
}

func newRouter(ctx context.Context, env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/clients", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name        string   `json:"name"`
			Role        string   `json:"role"`
			Email       string   `json:"email"`
			Platform    string   `json:"platform"`
			SearchTerms []string `json:"search_terms"`
			Profession  string   `json:"profession"`
			Location    string   `json:"location"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		platform, err := model.ParsePlatform(body.Platform)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported platform %q", body.Platform))
			return
		}

		client, err := env.Store.CreateClient(req.Context(), model.Client{
			Name:        body.Name,
			Role:        body.Role,
			Email:       body.Email,
			Platform:    platform,
			SearchTerms: body.SearchTerms,
			Profession:  body.Profession,
			Location:    body.Location,
		})
		if err != nil {
			zap.L().Error("create client failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to register client")
			return
		}
		writeJSON(w, http.StatusCreated, client)
	})

	r.Get("/clients", func(w http.ResponseWriter, req *http.Request) {
		clients, err := env.Store.ListClients(req.Context())
		if err != nil {
			zap.L().Error("list clients failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list clients")
			return
		}
		writeJSON(w, http.StatusOK, clients)
	})

	r.Get("/clients/{id}", func(w http.ResponseWriter, req *http.Request) {
		client, err := env.Store.GetClient(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		writeJSON(w, http.StatusOK, client)
	})

	// Fire-and-forget ingestion; returns a pollable task id.
	r.Post("/clients/{id}/fetch", func(w http.ResponseWriter, req *http.Request) {
		client, err := env.Store.GetClient(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}

		t := env.Tasks.Create(client.ID, model.TaskKindIngest)
		go func() {
			env.Tasks.Start(t.ID)
			res, err := env.Ingestor.Run(ctx, client)
			if err != nil {
				env.Tasks.Fail(t.ID, eris.Cause(err).Error())
				return
			}
			env.Tasks.Complete(t.ID, map[string]any{
				"stored_count":  res.Stored,
				"skipped_count": res.Skipped,
			})
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"task_id": t.ID,
			"status":  string(t.Status),
		})
	})

	// Fire-and-forget generation; returns a pollable task id.
	r.Post("/clients/{id}/generate", func(w http.ResponseWriter, req *http.Request) {
		client, err := env.Store.GetClient(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}

		t := env.Tasks.Create(client.ID, model.TaskKindGenerate)
		go func() {
			env.Tasks.Start(t.ID)
			res, err := env.Chain.Run(ctx, client.ID, client.Platform)
			if err != nil {
				env.Tasks.Fail(t.ID, eris.Cause(err).Error())
				return
			}
			env.Tasks.Complete(t.ID, map[string]any{
				"message":           res.Message,
				"target":            res.Target,
				"rationale":         res.Rationale,
				"insufficient_data": res.InsufficientData,
				"attempts":          res.Attempts,
			})
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"task_id": t.ID,
			"status":  string(t.Status),
		})
	})

	r.Get("/clients/{id}/audience", func(w http.ResponseWriter, req *http.Request) {
		client, err := env.Store.GetClient(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}

		records, err := env.Store.ListAudience(req.Context(), store.AudienceFilter{
			ClientID: client.ID,
			Platform: client.Platform,
		})
		if err != nil {
			zap.L().Error("list audience failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list audience")
			return
		}

		payloads := make([]model.RawRecord, 0, len(records))
		for _, rec := range records {
			payloads = append(payloads, rec.Payload)
		}
		profiles := audience.StandardizeAll(client.Platform, payloads, client.SearchTerms)
		writeJSON(w, http.StatusOK, map[string]any{
			"client_id": client.ID,
			"platform":  client.Platform,
			"total":     len(records),
			"profiles":  profiles,
		})
	})

	r.Get("/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
		t, ok := env.Tasks.Get(chi.URLParam(req, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "task not found or already cleaned up")
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
