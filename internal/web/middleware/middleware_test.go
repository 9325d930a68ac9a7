package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dosanma1/forge-sub000/pkg/web/response"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestRequestID(t *testing.T) {
	var fromContext string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Regexp(t, uuidPattern, fromContext)
	assert.Equal(t, fromContext, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_FromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reused bool
	}{
		{name: "valid", header: "abc-123", reused: true},
		{name: "control characters", header: "abc\x00def", reused: false},
		{name: "spaces", header: "a b", reused: false},
		{name: "too long", header: strings.Repeat("x", 129), reused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := RequestIDWithConfig(RequestIDConfig{Generator: func() string { return "generated" }})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					got = GetRequestID(r.Context())
				}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.header)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.reused {
				assert.Equal(t, tt.header, got)
			} else {
				assert.Equal(t, "generated", got)
			}
		})
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/articles/9", nil)
	req = req.WithContext(WithRequestID(req.Context(), "rid-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, "/articles/9", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.EqualValues(t, 7, fields["bytes"])
}

func TestLogging_DefaultStatusAndSkip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := LoggingWithConfig(LoggingConfig{Logger: zap.New(core), SkipPaths: []string{"/health"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 0, logs.Len())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles", nil))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.EqualValues(t, http.StatusOK, logs.All()[0].ContextMap()["status"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, response.JSONAPIMediaType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"errors":[{"status":"500","code":"internal_error","title":"Internal Server Error","detail":"an unexpected error occurred"}]}`, rec.Body.String())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "panic: boom", fields["error"])
	assert.Contains(t, fields, "stack")
}

func TestRecovery_AbortHandler(t *testing.T) {
	handler := Recovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name        string
		accept      string
		contentType string
		body        string
		want        int
	}{
		{name: "no accept", want: http.StatusOK},
		{name: "json:api", accept: response.JSONAPIMediaType, want: http.StatusOK},
		{name: "wildcard", accept: "*/*", want: http.StatusOK},
		{name: "quality only", accept: response.JSONAPIMediaType + ";q=0.9", want: http.StatusOK},
		{name: "only modified", accept: response.JSONAPIMediaType + `; ext="https://x"`, want: http.StatusNotAcceptable},
		{name: "modified plus wildcard", accept: response.JSONAPIMediaType + `; ext="https://x", */*`, want: http.StatusNotAcceptable},
		{name: "bare after modified", accept: response.JSONAPIMediaType + `; ext="https://x", ` + response.JSONAPIMediaType, want: http.StatusOK},
		{name: "html only", accept: "text/html", want: http.StatusNotAcceptable},
		{name: "body with json:api", contentType: response.JSONAPIMediaType, body: "{}", want: http.StatusOK},
		{name: "body with plain json", contentType: "application/json", body: "{}", want: http.StatusUnsupportedMediaType},
	}

	handler := Negotiate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.body != "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, "/articles", strings.NewReader(tt.body))
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
