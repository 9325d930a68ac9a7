package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDHeader is read from requests and echoed on responses
const RequestIDHeader = "X-Request-ID"

// RequestIDConfig holds configuration for the request ID middleware
type RequestIDConfig struct {
	HeaderName string
	// Generator creates an id when the request carries none
	Generator func() string
}

// DefaultRequestIDConfig returns the default request ID configuration
func DefaultRequestIDConfig() RequestIDConfig {
	return RequestIDConfig{
		HeaderName: RequestIDHeader,
		Generator:  func() string { return uuid.New().String() },
	}
}

// RequestID tags every request with an id, reusing a valid incoming one
func RequestID() Middleware {
	return RequestIDWithConfig(DefaultRequestIDConfig())
}

// RequestIDWithConfig creates a request ID middleware with custom configuration
func RequestIDWithConfig(config RequestIDConfig) Middleware {
	if config.HeaderName == "" {
		config.HeaderName = RequestIDHeader
	}
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig().Generator
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(config.HeaderName)
			if !validRequestID(id) {
				id = config.Generator()
			}

			w.Header().Set(config.HeaderName, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

// WithRequestID stores id in ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// validRequestID accepts short printable ids so clients cannot inject into headers or logs
func validRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
