package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook runs while the server drains, e.g. to close a cache
type ShutdownHook func(ctx context.Context) error

// DefaultShutdownTimeout bounds draining after the run context ends
const DefaultShutdownTimeout = 30 * time.Second

// Run serves until ctx is done, then shuts down within timeout and runs hooks in order.
// Hook failures are logged and do not stop the remaining hooks.
func (s *Server) Run(ctx context.Context, timeout time.Duration, hooks ...ShutdownHook) error {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.Shutdown(shutdownCtx)
	for i, hook := range hooks {
		if hookErr := hook(shutdownCtx); hookErr != nil {
			s.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(hookErr))
		}
	}
	if err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Start returns once Serve observes the shutdown
	if serveErr := <-errCh; serveErr != nil {
		return serveErr
	}
	s.logger.Info("server stopped")
	return nil
}
