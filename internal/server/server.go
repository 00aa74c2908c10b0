package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"snowglobe/internal/card"
	"snowglobe/internal/config"
)

type Server struct {
	cfg     *config.Config
	card    *card.Card
	loop    *frameLoop
	httpSrv *http.Server
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func New(cfg *config.Config, c *card.Card, logger *zap.SugaredLogger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	if c == nil {
		return nil, errors.New("server: nil card")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		cfg:    cfg,
		card:   c,
		loop:   newFrameLoop(c, cfg.Server.FrameInterval.Duration(), logger),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Handler exposes the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/shake", s.handleShake).Methods(http.MethodPost)
	r.HandleFunc("/motion", s.handleMotion).Methods(http.MethodPost)
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/flakes", s.handleFlakes).Methods(http.MethodGet)
	r.HandleFunc("/preview.png", s.handlePreview).Methods(http.MethodGet)
	r.HandleFunc("/greeting", s.handleGreeting).Methods(http.MethodGet, http.MethodPost)
	return r
}

// Run drives the frame loop and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer func() {
		cancelLoop()
		s.loop.Wait()
		s.card.Close()
	}()
	s.loop.Start(loopCtx)

	addr := s.cfg.Server.ListenAddress
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server listening", "addr", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		s.logger.Infow("HTTP server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
