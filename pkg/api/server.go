package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/blockfall/pkg/api/handlers"
	"github.com/cbodonnell/blockfall/pkg/api/middleware"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port       int
	TLS        *TLSConfig
	Repository repositories.Repository
	// Stream, if set, is served at /stream
	Stream http.Handler
}

// NewRouter routes the scoreboard and save slot endpoints
func NewRouter(opts NewAPIServerOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware())

	cors := middleware.NewCORSMiddleware("GET")
	r.Handle("/scores", cors(handlers.HandleListScores(opts.Repository))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/scores/high", cors(handlers.HandleHighScore(opts.Repository))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/version", cors(handlers.HandleVersion())).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/snapshots/{slot}", handlers.HandleGetSnapshot(opts.Repository)).Methods(http.MethodGet)
	r.HandleFunc("/snapshots/{slot}", handlers.HandleDeleteSnapshot(opts.Repository)).Methods(http.MethodDelete)

	if opts.Stream != nil {
		r.Handle("/stream", opts.Stream).Methods(http.MethodGet)
	}
	return r
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
