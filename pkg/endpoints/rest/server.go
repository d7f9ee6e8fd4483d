// Package rest serves the persisted report over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
)

var noopMeter = noop.NewMeterProvider().Meter("rlr")

const (
	PathPrefix    = "/api/v1"
	traceIDHeader = "X-Trace-ID"
)

type (
	ReportLoader interface {
		LoadAll(ctx context.Context, order racelog.Order) ([]model.ReportRow, error)
	}
	DriverLoader interface {
		LoadAll(ctx context.Context, order racelog.Order) ([]model.DriverRow, error)
		LoadByCode(ctx context.Context, code string) (*model.DriverRow, error)
	}

	Option func(*server)
	server struct {
		reports ReportLoader
		drivers DriverLoader
		log     *log.Logger
		tracer  trace.Tracer
		meter   metric.Meter
		metrics requestMetrics
	}
	requestMetrics struct {
		requests metric.Int64Counter
		duration metric.Float64Histogram
	}
)

func WithReportLoader(r ReportLoader) Option {
	return func(s *server) {
		s.reports = r
	}
}

func WithDriverLoader(d DriverLoader) Option {
	return func(s *server) {
		s.drivers = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *server) {
		s.log = l
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *server) {
		s.tracer = tracer
	}
}

func WithMeter(meter metric.Meter) Option {
	return func(s *server) {
		s.meter = meter
	}
}

// NewHandler returns the router for the report API wrapped with a
// permissive CORS handler.
func NewHandler(opts ...Option) http.Handler {
	s := &server{
		log:    log.Default().Named("rest"),
		tracer: otel.Tracer("rlr"),
		meter:  otel.Meter("rlr"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newRequestMetrics(s.meter, s.log)
	return newCORS().Handler(s.router())
}

// newRequestMetrics falls back to noop instruments if the meter refuses one
func newRequestMetrics(meter metric.Meter, l *log.Logger) requestMetrics {
	var err error
	m := requestMetrics{}
	if m.requests, err = meter.Int64Counter("rlr.http.requests",
		metric.WithDescription("number of handled API requests")); err != nil {
		l.Warn("could not create request counter", log.ErrorField(err))
		m.requests, _ = noopMeter.Int64Counter("rlr.http.requests")
	}
	if m.duration, err = meter.Float64Histogram("rlr.http.duration",
		metric.WithDescription("duration of API requests"),
		metric.WithUnit("s")); err != nil {
		l.Warn("could not create duration histogram", log.ErrorField(err))
		m.duration, _ = noopMeter.Float64Histogram("rlr.http.duration")
	}
	return m
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
	r.Use(s.logRequests)

	api := r.PathPrefix(PathPrefix).Subrouter()
	api.HandleFunc("/report", s.getReport).Methods(http.MethodGet)
	api.HandleFunc("/report/drivers", s.getDrivers).Methods(http.MethodGet)
	api.HandleFunc("/report/drivers/", s.getDrivers).Methods(http.MethodGet)
	api.HandleFunc("/report/drivers/{code}", s.getDriver).Methods(http.MethodGet)
	api.HandleFunc("/version", s.getVersion).Methods(http.MethodGet)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqLog := s.log.With(
			log.String("method", r.Method),
			log.String("uri", r.URL.RequestURI()))
		next.ServeHTTP(rec, r.WithContext(log.AddToContext(r.Context(), reqLog)))
		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", routeTemplate(r)),
			attribute.Int("status", rec.status))
		s.metrics.requests.Add(r.Context(), 1, attrs)
		s.metrics.duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
		reqLog.Debug("request",
			log.Int("status", rec.status),
			log.Duration("took", time.Since(start)))
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unknown"
}

func newCORS() *cors.Cors {
	// The API is read only, so allow all origins.
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodOptions,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Content-Encoding",
			traceIDHeader,
		},
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
