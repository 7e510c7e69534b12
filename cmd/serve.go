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

	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/internal/pipeline"
)

var servePort int

// analyzeRequest is the webhook payload.
type analyzeRequest struct {
	DealData model.DealInput `json:"dealData"`
	DealID   string          `json:"dealId"`
	UserID   string          `json:"userId"`
}

// analyzeResponse is the success envelope.
type analyzeResponse struct {
	Success  bool            `json:"success"`
	Analysis *model.Analysis `json:"analysis"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}

// newRouter builds the HTTP routes for the analysis service.
func newRouter(p *pipeline.Pipeline, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body analyzeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, "invalid request body")
			return
		}
		if body.DealID == "" || body.UserID == "" {
			writeError(w, "dealId and userId are required")
			return
		}

		result, err := p.Run(req.Context(), body.DealData, body.DealID, body.UserID)
		if err != nil {
			zap.L().Error("analyze request failed",
				zap.String("deal_id", body.DealID),
				zap.Error(err))
			writeError(w, "analysis failed")
			return
		}

		writeJSON(w, http.StatusOK, analyzeResponse{
			Success:  true,
			Analysis: result.Analysis,
		})
	})

	return r
}

// drainServer shuts the server down on a fresh context so in-flight
// requests get the full grace period. The signal context that triggers
// shutdown is already canceled and would abort the drain immediately.
func drainServer(srv *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deal analysis webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
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
			Handler: newRouter(env.Pipeline, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainServer(srv, 15*time.Second)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
