package api

import (
	"context"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/expidus/lunar-remote/backend"
	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/logger"
)

type Server struct {
	mux         *http.ServeMux
	config      *config.ApiConfig
	broadcaster *backend.Broadcaster
	metrics     *metrics
	advertiser  *advertiser
}

// NewServer returns nil when the bridge is disabled.
func NewServer(ctx context.Context, cfg *config.ApiConfig, b *backend.Backend) *Server {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	var broadcaster *backend.Broadcaster
	if b != nil {
		broadcaster = b.NewBroadcaster(ctx)
	}

	server := &Server{
		mux:         http.NewServeMux(),
		config:      cfg,
		broadcaster: broadcaster,
		advertiser:  newAdvertiser(cfg.Zeroconf),
	}
	if cfg.Metrics {
		server.metrics = newMetrics()
	}
	server.register(b)
	return server
}

// Handler returns the routes wrapped in the configured middleware.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.metrics != nil {
		handler = s.metrics.middleware(handler)
	}
	if s.config.CORS != nil {
		handler = corsMiddleware(s.config.CORS)(handler)
	}
	return handler
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Listen,
		Handler: s.Handler(),
		// Request contexts derive from ctx so that SSE streams end on shutdown.
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Info("[api] server %s shutdown error: %v", srv.Addr, err)
		}
	}()

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	if s.advertiser != nil {
		if err := s.advertiser.Start(ctx); err != nil {
			logger.Warn("[api] zeroconf advertisement failed: %v", err)
		}
	}

	logger.Info("[api] http server running on %s", listener.Addr())
	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) register(b *backend.Backend) {
	// unmatched paths get 404 and known paths with another method 405
	// from the mux itself
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.handler())
	}

	if b == nil {
		return
	}

	s.registerServerRoutes(b)

	if b.FileManager != nil {
		s.registerFileManagerRoutes(b.FileManager)
	}
	if b.Lunar != nil {
		s.registerLunarRoutes(b.Lunar)
	}
	if b.Trash != nil {
		s.registerTrashRoutes(b.Trash)
	}
	if b.FDO != nil {
		s.registerFDORoutes(b.FDO)
	}
}

func corsMiddleware(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	wildcard := slices.Contains(cfg.Origins, "*")
	logger.Info("[api] CORS enabled, origins: %v", cfg.Origins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if wildcard {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else if slices.Contains(cfg.Origins, origin) {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
