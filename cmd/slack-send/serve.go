package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/gobeaver/slack-dispatch/config"
	"github.com/gobeaver/slack-dispatch/slack"
)

const maxRequestBody = 1 << 20

type serveOptions struct {
	addr            string
	shutdownTimeout time.Duration
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the dispatcher over HTTP",
		Long: `Serve POST /v1/messages: the request body is a parameter object and the
response body is the result record. GET /healthz reports whether credentials
are configured. Each request is an independent invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.newService(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				if port, _, ok := config.Lookup("PORT"); ok {
					opts.addr = ":" + port
				}
			}
			return runServer(cmd, svc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address (defaults to :$PORT when PORT is set)")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")

	return cmd
}

func runServer(cmd *cobra.Command, svc *slack.Service, opts *serveOptions) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           newRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func newRouter(svc *slack.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			res := slack.Failure(fmt.Errorf("%w: %v", slack.ErrValidation, err))
			writeJSON(w, http.StatusRequestEntityTooLarge, res)
			return
		}

		res := svc.Run(r.Context(), body)
		writeJSON(w, statusFor(res), res)
	})

	return r
}

// statusFor maps a result onto an HTTP status.
func statusFor(res slack.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch slack.ErrorKind(res.Err()) {
	case "validation", "configuration":
		return http.StatusUnprocessableEntity
	case "transport", "provider":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
