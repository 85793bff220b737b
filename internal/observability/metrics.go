package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "groupchat"

// Route label used for requests that matched no route, so scanners cannot grow the series.
const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route template and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	grpcServerHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grpc",
		Name:      "server_handled_total",
		Help:      "Unary gRPC calls completed by the server.",
	}, []string{"grpc_service", "grpc_method", "grpc_code"})

	wsActiveConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Open realtime connections.",
	}, []string{"kind"})

	wsEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "events_total",
		Help:      "Realtime lifecycle and inbound events.",
	}, []string{"kind", "event"})

	wsEventOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "event_outcomes_total",
		Help:      "Inbound realtime events by outcome: ok or the error code sent back.",
	}, []string{"event", "outcome"})

	wsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "dropped_payloads_total",
		Help:      "Outbound payloads discarded because a client queue was full or closed.",
	})

	wsBroadcastFanout = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "broadcast_fanout",
		Help:      "Connections a single broadcast was queued for.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	amqpPublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "amqp",
		Name:      "publish_errors_total",
		Help:      "Audit and lifecycle events that failed to reach the broker.",
	})

	amqpDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "amqp",
		Name:      "dropped_total",
		Help:      "Audit and lifecycle events discarded because the outbound queue was full.",
	})

	kafkaPublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kafka",
		Name:      "publish_errors_total",
		Help:      "Chat activity records that failed to reach Kafka.",
	})

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Operations rejected by the per-user rate limiter.",
	}, []string{"surface"})
)

// HTTPMetricsMiddleware records count and latency per route template.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, status.Code(err).String()).Inc()
		return resp, err
	}
}

// splitFullMethod turns "/pkg.Service/Method" into its service and method.
func splitFullMethod(fullMethod string) (string, string) {
	service, method, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if !ok || service == "" || method == "" {
		return "unknown", "unknown"
	}
	return service, method
}

func IncWSActive(kind string) { wsActiveConnections.WithLabelValues(kind).Inc() }

func DecWSActive(kind string) { wsActiveConnections.WithLabelValues(kind).Dec() }

func IncWSEvent(kind, event string) { wsEventsTotal.WithLabelValues(kind, event).Inc() }

func IncWSOutcome(event, outcome string) { wsEventOutcomesTotal.WithLabelValues(event, outcome).Inc() }

func IncWSDropped() { wsDroppedTotal.Inc() }

// ObserveBroadcast records how many connections one broadcast reached.
func ObserveBroadcast(delivered int) { wsBroadcastFanout.Observe(float64(delivered)) }

func IncAMQPPublishError() { amqpPublishErrorsTotal.Inc() }

func IncAMQPDropped() { amqpDroppedTotal.Inc() }

func IncKafkaPublishError() { kafkaPublishErrorsTotal.Inc() }

// IncRateLimited counts a rejection on the given surface ("http" or "ws").
func IncRateLimited(surface string) { rateLimitedTotal.WithLabelValues(surface).Inc() }
