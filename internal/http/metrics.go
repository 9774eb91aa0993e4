// Package http contiene instrumentación Prometheus para el servicio.
package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/dropDatabas3/keygate/internal/http/middlewares"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Domain metrics
	tokensIssuedTotal     *prometheus.CounterVec
	tokenValidationsTotal *prometheus.CounterVec
	tokenRevocationsTotal prometheus.Counter
	codeExchangesTotal    *prometheus.CounterVec
)

// RegisterMetrics registra los collectors en el registry por defecto.
// Idempotente.
func RegisterMetrics() error {
	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_http_requests_total",
			Help: "Total de requests HTTP por método, ruta y status.",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keygate_http_request_duration_seconds",
			Help:    "Duración de requests HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_tokens_issued_total",
			Help: "Tokens emitidos por tipo (access, refresh, code, opaque).",
		}, []string{"type"})

		tokenValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_token_validations_total",
			Help: "Validaciones de tokens por resultado (ok, invalid, expired, revoked, error).",
		}, []string{"result"})

		tokenRevocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keygate_token_revocations_total",
			Help: "Revocaciones de tokens exitosas.",
		})

		codeExchangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keygate_code_exchanges_total",
			Help: "Intercambios de authorization codes por resultado (ok, invalid_grant, error).",
		}, []string{"result"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal,
			httpRequestDuration,
			tokensIssuedTotal,
			tokenValidationsTotal,
			tokenRevocationsTotal,
			codeExchangesTotal,
		} {
			if err := prometheus.Register(c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	return metricsErr
}

// MetricsHandler expone /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveTokenIssued incrementa el contador de tokens emitidos.
func ObserveTokenIssued(tokenType string) {
	if tokensIssuedTotal != nil {
		tokensIssuedTotal.WithLabelValues(tokenType).Inc()
	}
}

// ObserveTokenValidation incrementa el contador de validaciones.
func ObserveTokenValidation(result string) {
	if tokenValidationsTotal != nil {
		tokenValidationsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveTokenRevocation incrementa el contador de revocaciones.
func ObserveTokenRevocation() {
	if tokenRevocationsTotal != nil {
		tokenRevocationsTotal.Inc()
	}
}

// ObserveCodeExchange incrementa el contador de intercambios de código.
func ObserveCodeExchange(result string) {
	if codeExchangesTotal != nil {
		codeExchangesTotal.WithLabelValues(result).Inc()
	}
}

// WithMetrics instrumenta requests HTTP con contadores e histogramas.
func WithMetrics() mw.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusWriter) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.status = http.StatusOK
		s.wroteHeader = true
	}
	return s.ResponseWriter.Write(b)
}
