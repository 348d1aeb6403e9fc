// Package server exposes the JSON tools over HTTP.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mcncl/jsonkit/internal/captcha"
	"github.com/mcncl/jsonkit/internal/config"
	"github.com/mcncl/jsonkit/internal/differ"
	"github.com/mcncl/jsonkit/internal/password"
)

const defaultShutdownTimeout = 5 * time.Second

// Server routes API requests to the tool packages.
type Server struct {
	cfg       *config.Config
	log       *logrus.Logger
	differ    *differ.Differ
	captchas  *captcha.Store
	passwords *password.Generator
	mux       *http.ServeMux
}

// New creates a Server from a validated config.
func New(cfg *config.Config, log *logrus.Logger) *Server {
	var opts differ.Options
	if len(cfg.Diff.IgnorePatterns) > 0 {
		// Compile up front so concurrent handlers only read the patterns.
		cfg.Diff.ShouldIgnore("")
		opts.Ignore = cfg.Diff.ShouldIgnore
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		differ:    differ.NewDifferWithOptions(opts),
		captchas:  captcha.NewStore(cfg.Captcha.TTL),
		passwords: password.NewGenerator(),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/diff", s.handleDiff)
	s.mux.HandleFunc("POST /api/convert", s.handleConvert)
	s.mux.HandleFunc("POST /api/format", s.handleFormat)
	s.mux.HandleFunc("POST /api/minify", s.handleMinify)
	s.mux.HandleFunc("POST /api/validate", s.handleValidate)
	s.mux.HandleFunc("POST /api/query", s.handleQuery)
	s.mux.HandleFunc("POST /api/set", s.handleSet)
	s.mux.HandleFunc("POST /api/delete", s.handleDelete)
	s.mux.HandleFunc("POST /api/password", s.handlePassword)
	s.mux.HandleFunc("POST /api/password/strength", s.handlePasswordStrength)
	s.mux.HandleFunc("GET /api/captcha", s.handleCaptcha)
	s.mux.HandleFunc("POST /api/captcha/verify", s.handleCaptchaVerify)
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.withRecover(s.withBodyLimit(s.mux))))
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("server listening")

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
