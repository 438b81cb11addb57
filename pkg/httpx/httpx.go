// Package httpx runs an http.Handler on one of the supported transport
// engines. The default is net/http; fasthttp is available for deployments
// that want its connection handling.
package httpx

import (
	"context"
	"net/http"
	"time"
)

const (
	EngineNetHTTP  = "nethttp"
	EngineFastHTTP = "fasthttp"

	defaultShutdownTimeout = 10 * time.Second
)

// Server binds a handler to an address on the selected engine.
type Server struct {
	Addr     string
	Engine   string
	CertFile string
	KeyFile  string
	Handler  http.Handler
	// ShutdownTimeout bounds graceful shutdown; zero means a 10s default.
	ShutdownTimeout time.Duration
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.ShutdownTimeout > 0 {
		return s.ShutdownTimeout
	}
	return defaultShutdownTimeout
}

// Start launches the server and returns a channel carrying the terminal
// serve error. Cancelling ctx triggers a graceful shutdown; the channel then
// yields nil or the shutdown error.
func (s *Server) Start(ctx context.Context) <-chan error {
	if s.Engine == EngineFastHTTP {
		return s.startFastHTTP(ctx)
	}
	return s.startNetHTTP(ctx)
}
