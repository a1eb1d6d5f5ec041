// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 120 * time.Second
)

// Serve listens on Settings.ListenAddr until ctx is done, then drains
// in-flight requests for up to the App's shutdown timeout.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Settings.ListenAddr)
	if err != nil {
		return err
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       a.Settings.RequestTimeout,
		WriteTimeout:      a.Settings.RequestTimeout + 5*time.Second,
		IdleTimeout:       idleTimeout,
		ErrorLog:          zap.NewStdLog(a.Logger.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Timeouts.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	a.Logger.Info("http server stopped")
	return nil
}

// Close stops background workers, closes the key-value client and the
// database handle, restores the previous global logger and closes the log
// file. It is safe to call more than once.
func (a *App) Close() error {
	if a.state == StateClosed {
		return nil
	}
	err := a.release()
	a.state = StateClosed
	return err
}

func (a *App) release() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.cleanup != nil {
		a.cleanup.Stop()
		a.cleanup = nil
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
		a.Redis = nil
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
		a.DB = nil
	}
	if a.restore != nil {
		a.restore()
		a.restore = nil
	}
	if a.sink != nil {
		a.Logger.Info("closing log file")
		a.logs.Set(nil)
		if err := a.sink.Close(); err != nil {
			errs = append(errs, err)
		}
		a.sink = nil
	}
	return errors.Join(errs...)
}
