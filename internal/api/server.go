package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-analytics/internal/analytics"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"go.uber.org/zap"
)

// Server exposes the analytics service over HTTP. Every request reads the
// ledger from source, restricted by the request's account and time filters.
type Server struct {
	service  *analytics.Service
	source   ledger.Source
	log      *logger.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
	http     *http.Server
}

func NewServer(service *analytics.Service, source ledger.Source, log *logger.Logger) *Server {
	s := &Server{
		service: service,
		source:  source,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.router = s.routes()

	return s
}

// Routes:
//
//	GET    /health
//	GET    /metrics                      prometheus exposition
//	GET    /api/v1/metrics               metric names
//	GET    /api/v1/metrics/{name}        one metric table
//	GET    /api/v1/summary               performance summaries
//	GET    /api/v1/balance               cached balance curve
//	DELETE /api/v1/cache                 invalidate cached balances
//	GET    /ws/compute                   every metric, one message per table
func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.recovery)
	router.Use(s.logging)

	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/metrics", s.listMetrics).Methods(http.MethodGet)
	v1.HandleFunc("/metrics/{name}", s.computeMetric).Methods(http.MethodGet)
	v1.HandleFunc("/summary", s.summary).Methods(http.MethodGet)
	v1.HandleFunc("/balance", s.balance).Methods(http.MethodGet)
	v1.HandleFunc("/cache", s.invalidateCache).Methods(http.MethodDelete)

	router.HandleFunc("/ws/compute", s.streamCompute).Methods(http.MethodGet)

	return router
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("Analytics API listening", zap.String("addr", addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.http.Shutdown(shutdownCtx)
	}
}
