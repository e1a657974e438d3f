package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) HTTPServer {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return HTTPServer{s}
}

// Run serves until the server is closed. Any other exit calls stopFn so
// the rest of the process shuts down too.
func (s HTTPServer) Run(stopFn context.CancelFunc) error {
	defer stopFn()

	log.Infof("🚀 HTTP server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("Unexpected server shutdown: %v", err)
		return err
	}
	return nil
}

func (s HTTPServer) Close(ctx context.Context) {
	log.Info("Closing HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Failed to shutdown gracefully: %v", err)
	}
	log.Info("HTTP server is closed")
}
