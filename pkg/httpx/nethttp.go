package httpx

import (
	"context"
	"errors"
	"net/http"

	"chatcore/pkg/logger"
)

func (s *Server) startNetHTTP(ctx context.Context) <-chan error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler}
	errCh := make(chan error, 1)

	go func() {
		var err error
		if s.CertFile != "" && s.KeyFile != "" {
			err = srv.ListenAndServeTLS(s.CertFile, s.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	go func() {
		<-ctx.Done()
		shctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shctx); err != nil {
			logger.Warn("http_shutdown_error", "error", err)
		}
	}()

	return errCh
}
