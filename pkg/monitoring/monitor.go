package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"method", "endpoint"},
	)

	// AIGenerations 按内容类型和结果统计 AI 生成次数，outcome: success | retry | fallback | error
	AIGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillpath_ai_generations_total",
			Help: "AI content generation attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AIGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillpath_ai_generation_duration_seconds",
			Help:    "Duration of a single AI generation call",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"kind"},
	)

	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillpath_certificate_render_duration_seconds",
			Help:    "Duration of certificate HTML to PNG rendering",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"engine", "outcome"},
	)

	CertificatesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skillpath_certificates_issued_total",
			Help: "Number of certificates issued",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AIGenerations,
			AIGenerationDuration,
			RenderDuration,
			CertificatesIssued,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

// ObserveRender 记录一次渲染耗时
func ObserveRender(engine string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RenderDuration.WithLabelValues(engine, outcome).Observe(time.Since(start).Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
