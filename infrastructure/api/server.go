// Package api exposes rooms over HTTP: room creation, invitations and the websocket endpoint.
package api

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

func NewRouter(handler *Handler, allowedOrigins []string, log *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger(log), CORS(allowedOrigins))

	router.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	router.HandleFunc("/rooms", handler.CreateRoom).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/rooms/{roomId}/invite", handler.Invite).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/rooms/{roomId}/connect", handler.Connect).Methods(http.MethodGet)
	return router
}

// Server is a supervised worker serving the router until its context ends.
type Server struct {
	srv      *http.Server
	listener net.Listener
	log      *slog.Logger
}

func NewServer(listener net.Listener, handler http.Handler, log *slog.Logger) *Server {
	return &Server{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		listener: listener,
		log:      log,
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.listener.Addr().String())
		errCh <- s.srv.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("HTTP server shutdown", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
