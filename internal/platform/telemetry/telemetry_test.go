package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordSpans installs a recording tracer provider for the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		_ = tp.Shutdown(context.Background())
	})

	return rec
}

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(t.Context(), &Config{Enabled: false})

	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(t.Context()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestMiddleware_TagsTraceID(t *testing.T) {
	rec := recordSpans(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
	})
	engine.Use(Middleware("quotesync")...)
	engine.GET("/quotes/:id", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("handled")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes/q1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)

	spans := rec.Ended()
	require.Len(t, spans, 1)

	want := spans[0].SpanContext().TraceID().String()
	assert.Equal(t, want, w.Header().Get(HeaderTraceID))
	assert.Contains(t, buf.String(), `"trace_id":"`+want+`"`)
	assert.Contains(t, spans[0].Name(), "/quotes/:id")
}

func TestMiddleware_NoopProviderSkipsHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(Middleware("quotesync")...)
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(HeaderTraceID))
}

func TestStartSpan_EndSpan(t *testing.T) {
	rec := recordSpans(t)

	_, ok := StartSpan(t.Context(), "sync.cycle", attribute.String("sync.mode", "full"))
	EndSpan(ok, nil)

	_, failed := StartSpan(t.Context(), "sync.cycle")
	EndSpan(failed, errors.New("remote down"))

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "sync.cycle", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("sync.mode", "full"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "remote down", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
}
