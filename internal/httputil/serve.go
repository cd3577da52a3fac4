package httputil

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskmesh/deskmesh/logging"
)

// ServeOptions tune the HTTP server timeouts. Services whose handlers can
// legitimately run long (the supervisor's pipeline) raise WriteTimeout
// above the default.
type ServeOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func newServer(addr string, handler http.Handler, optFns ...func(o *ServeOptions)) *http.Server {
	opts := ServeOptions{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
}

// Serve runs an HTTP server on addr until SIGINT/SIGTERM, then shuts it
// down gracefully with a bounded drain window.
func Serve(addr string, handler http.Handler, logger logging.Logger, optFns ...func(o *ServeOptions)) error {
	srv := newServer(addr, handler, optFns...)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
