package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
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

	"github.com/sells-group/knowledge-cli/internal/model"
	"github.com/sells-group/knowledge-cli/internal/store"
)

var servePort int

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for selection and knowledge-base runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return eris.Wrapf(err, "listen on port %d", port)
		}

		srv := &http.Server{Handler: newRouter(ctx, e)}

		zap.L().Info("starting server", zap.Int("port", port))
		return serveAndShutdown(ctx, srv, ln)
	},
}

// newRouter builds the API routes. ctx bounds background run execution and
// outlives individual requests.
func newRouter(ctx context.Context, e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/select", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Target string `json:"target"`
			Budget string `json:"budget"`
			TopN   int    `json:"top_n"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Target == "" {
			writeError(w, http.StatusBadRequest, "target is required")
			return
		}
		if body.Budget == "" {
			body.Budget = string(model.BudgetOptimal)
		}

		selection, err := e.Selector.Select(body.Target, model.BudgetMode(body.Budget), body.TopN)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, selection)
	})

	r.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
		var body model.Request
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Target == "" {
			writeError(w, http.StatusBadRequest, "target is required")
			return
		}

		// Create the record synchronously so the client gets an ID it can
		// poll via GET /runs/{id}; the phases execute in the background.
		run, err := e.Pipeline.CreateRun(req.Context(), body)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		go func() {
			result, runErr := e.Pipeline.ExecuteRun(ctx, run.ID, body)
			if runErr != nil {
				zap.L().Error("api run failed",
					zap.String("run_id", run.ID),
					zap.String("target", body.Target),
					zap.Error(runErr),
				)
				return
			}
			zap.L().Info("api run complete",
				zap.String("run_id", run.ID),
				zap.String("target", body.Target),
				zap.String("provider", result.ProviderUsed),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"run_id": run.ID,
			"status": "accepted",
			"target": body.Target,
		})
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := e.Store.ListRuns(req.Context(), store.RunFilter{
			Status: model.RunStatus(req.URL.Query().Get("status")),
			Limit:  50,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		run, err := e.Store.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	r.Get("/providers", func(w http.ResponseWriter, _ *http.Request) {
		allowed, _ := e.Denylist.FilterBanned(e.Catalog.All())
		writeJSON(w, http.StatusOK, allowed)
	})

	return r
}

// serveAndShutdown serves on ln until ctx is canceled, then drains in-flight
// requests for up to shutdownGrace before returning.
func serveAndShutdown(ctx context.Context, srv *http.Server, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	<-served
	return nil
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
