package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// HeaderTraceID echoes the request's trace ID so a client can quote it.
const HeaderTraceID = "X-Trace-ID"

type serverMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics() (*serverMetrics, error) {
	meter := otel.Meter(instrumentationName)

	var (
		m   serverMetrics
		err error
		all []error
	)

	m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time to serve a request"), metric.WithUnit("s"))
	all = append(all, err)

	m.requests, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests served"))
	all = append(all, err)

	m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests being served"))
	all = append(all, err)

	for _, err := range all {
		if err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// Middleware returns the request instrumentation chain: an otelgin span per
// request, then server metrics by route and status. The trace ID goes into
// X-Trace-ID and onto the request logger.
func Middleware(service string) gin.HandlersChain {
	m, err := newServerMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return gin.HandlersChain{otelgin.Middleware(service), observe(m)}
}

func observe(m *serverMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Header(HeaderTraceID, id)
			c.Request = c.Request.WithContext(logging.WithTraceID(ctx, id))
		}

		if m == nil {
			c.Next()
			return
		}

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		m.inFlight.Add(ctx, 1, metric.WithAttributes(method, route))
		start := time.Now()

		c.Next()

		m.inFlight.Add(ctx, -1, metric.WithAttributes(method, route))

		done := metric.WithAttributes(method, route,
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())))
		m.duration.Record(ctx, time.Since(start).Seconds(), done)
		m.requests.Add(ctx, 1, done)
	}
}
