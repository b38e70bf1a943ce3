// =============================
// File: internal/api/server.go
// =============================
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"cosmossdk.io/math"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/dex/amm"
	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

// Engine is the part of the launch engine the API serves.
type Engine interface {
	Execute(ctx context.Context, env launchpad.Envelope) (*launchpad.Response, error)
	Query(ctx context.Context, q launchpad.QueryMsg) (interface{}, error)
}

// Venue is the read side of the secondary AMM.
type Venue interface {
	Pool(token string) (amm.Pool, bool)
	Quote(token string, side types.Side, amountIn math.Int) (math.Int, error)
}

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Engine       Engine
	Venue        Venue
	Hub          *Hub
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server exposes the engine over HTTP and WebSocket.
type Server struct {
	engine Engine
	venue  Venue
	hub    *Hub
	logger *zap.Logger
	router *mux.Router
	http   *http.Server
}

// NewServer wires the routes. Call Start to listen.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: opts.Engine,
		venue:  opts.Venue,
		hub:    opts.Hub,
		logger: logger.Named("api"),
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/execute", s.handleExecute).Methods("POST")
	v1.HandleFunc("/query", s.handleQuery).Methods("POST")

	// Launch venue reads
	v1.HandleFunc("/pools/{token}", s.handleGetPool).Methods("GET")
	v1.HandleFunc("/pairs", s.handleListPairs).Methods("GET")
	v1.HandleFunc("/orderbook", s.handleGetOrderBook).Methods("GET")
	v1.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods("GET")
	v1.HandleFunc("/users/{address}/orders", s.handleUserOrders).Methods("GET")
	v1.HandleFunc("/users/{address}/trades", s.handleUserTrades).Methods("GET")
	v1.HandleFunc("/users/{address}/balances", s.handleUserBalances).Methods("GET")
	v1.HandleFunc("/trades", s.handleRecentTrades).Methods("GET")
	v1.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	v1.HandleFunc("/stats", s.handleGetStats).Methods("GET")

	// Secondary AMM reads
	v1.HandleFunc("/amm/pools/{token}", s.handleAMMPool).Methods("GET")
	v1.HandleFunc("/amm/quote", s.handleAMMQuote).Methods("GET")

	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.ServeWS).Methods("GET")
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router = r
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Stop is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve is Start on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and closes WebSocket clients.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.http.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The upgrader needs the raw writer to hijack the connection.
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
