package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/dosanma1/forge-sub000/pkg/web/response"
)

// errInternal is the detail shown to clients after a panic
var errInternal = errors.New("an unexpected error occurred")

// RecoveryConfig holds configuration for the recovery middleware
type RecoveryConfig struct {
	Logger           *zap.Logger
	EnableStackTrace bool
}

// Recovery turns handler panics into a JSON:API 500 response
func Recovery(logger *zap.Logger) Middleware {
	return RecoveryWithConfig(RecoveryConfig{Logger: logger, EnableStackTrace: true})
}

// RecoveryWithConfig creates a recovery middleware with custom configuration
func RecoveryWithConfig(config RecoveryConfig) Middleware {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let the server abort the connection as it normally would
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				fields := []zap.Field{
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(panicError(rec)),
				}
				if config.EnableStackTrace {
					fields = append(fields, zap.ByteString("stack", debug.Stack()))
				}
				logger.Error("panic recovered", fields...)

				response.RenderError(w, http.StatusInternalServerError, errInternal)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
