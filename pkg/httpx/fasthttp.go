package httpx

import (
	"context"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"chatcore/pkg/logger"
)

func (s *Server) startFastHTTP(ctx context.Context) <-chan error {
	srv := &fasthttp.Server{Handler: fasthttpadaptor.NewFastHTTPHandler(s.Handler)}
	errCh := make(chan error, 1)

	go func() {
		if s.CertFile != "" && s.KeyFile != "" {
			errCh <- srv.ListenAndServeTLS(s.Addr, s.CertFile, s.KeyFile)
		} else {
			errCh <- srv.ListenAndServe(s.Addr)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			logger.Warn("http_shutdown_error", "engine", "fasthttp", "error", err)
		}
	}()

	return errCh
}
