// Package server exposes scan results over a small read-only HTTP API.
// The only state-changing route is POST /scan, which triggers a guarded
// rescan; nothing here signs or submits transactions.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/service/report"
	"github.com/mrz1836/janitor/internal/service/scan"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	defaultShutdownTimeout   = 15 * time.Second
	defaultRequestTimeout    = 60 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 90 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// Scanner runs and remembers scans. Satisfied by *scan.Service.
type Scanner interface {
	Scan(ctx context.Context, chainID chain.ID, owner string) (*scan.Result, error)
	Latest(chainID chain.ID, owner string) (*scan.Result, bool)
}

// Reporter classifies a scan. Satisfied by *report.Builder.
type Reporter interface {
	Build(ctx context.Context, res *scan.Result, opts report.Options) (*report.Report, error)
}

// Server is the HTTP API.
type Server struct {
	scanner  Scanner
	reporter Reporter
	logger   *zap.Logger
}

// New creates a server.
func New(scanner Scanner, reporter Reporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{scanner: scanner, reporter: reporter, logger: logger}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/{chain}/{address}", func(r chi.Router) {
		r.Get("/holdings", s.handle(s.holdings))
		r.Get("/approvals", s.handle(s.approvals))
		r.Post("/scan", s.handle(s.rescan))
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			s.logger.Error("HTTP server error", zap.Error(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return runErr
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, chainID chain.ID, owner string) error

// handle parses and validates the chain and address path parameters before
// calling h, and renders any error h returns.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chainID, err := chain.ParseChainID(chi.URLParam(r, "chain"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		owner := chi.URLParam(r, "address")
		if !validOwner(chainID, owner) {
			s.writeError(w, r, janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{"address": owner}))
			return
		}
		if err := h(w, r, chainID, owner); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func validOwner(chainID chain.ID, owner string) bool {
	if chainID.IsEVM() {
		return evm.IsValidAddress(owner)
	}
	return solana.IsValidAddress(owner)
}

// holdings serves the latest published scan, scanning first if there is none.
func (s *Server) holdings(w http.ResponseWriter, r *http.Request, chainID chain.ID, owner string) error {
	res, err := s.latestOrScan(r.Context(), chainID, owner)
	if err != nil {
		return err
	}
	rep, err := s.reporter.Build(r.Context(), res, report.Options{
		ShowHidden: r.URL.Query().Get("show_hidden") == "true",
		Approvals:  true,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rep)
}

func (s *Server) approvals(w http.ResponseWriter, r *http.Request, chainID chain.ID, owner string) error {
	res, err := s.latestOrScan(r.Context(), chainID, owner)
	if err != nil {
		return err
	}
	rep, err := s.reporter.Build(r.Context(), res, report.Options{ShowHidden: true, Approvals: true})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"chain":     chainID,
		"owner":     owner,
		"approvals": nonNil(rep.Approvals),
	})
}

func (s *Server) rescan(w http.ResponseWriter, r *http.Request, chainID chain.ID, owner string) error {
	res, err := s.scanner.Scan(r.Context(), chainID, owner)
	if err != nil {
		return err
	}
	rep, err := s.reporter.Build(r.Context(), res, report.Options{Approvals: true})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rep)
}

func (s *Server) latestOrScan(ctx context.Context, chainID chain.ID, owner string) (*scan.Result, error) {
	if res, ok := s.scanner.Latest(chainID, owner); ok {
		return res, nil
	}
	return s.scanner.Scan(ctx, chainID, owner)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
