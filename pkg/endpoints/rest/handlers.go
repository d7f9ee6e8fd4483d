package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/api"
	"github.com/mpapenbr/racelog-report/version"
)

var codeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)

func (s *server) getReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(w, r, "report.list")
	defer span.End()

	f, order, ok := s.listParams(w, r, span)
	if !ok {
		return
	}
	rows, err := s.reports.LoadAll(ctx, order)
	if err != nil {
		s.internalError(ctx, w, span, err)
		return
	}
	if len(rows) == 0 {
		s.noData(w, span, "no report data available")
		return
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	s.write(w, f, http.StatusOK, listEnvelope[reportItem]{
		Response: lo.Map(rows, toReportItem),
	})
}

func (s *server) getDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(w, r, "drivers.list")
	defer span.End()

	f, order, ok := s.listParams(w, r, span)
	if !ok {
		return
	}
	rows, err := s.drivers.LoadAll(ctx, order)
	if err != nil {
		s.internalError(ctx, w, span, err)
		return
	}
	if len(rows) == 0 {
		s.noData(w, span, "no drivers available")
		return
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	s.write(w, f, http.StatusOK, listEnvelope[driverItem]{
		Response: lo.Map(rows, toDriverItem),
	})
}

func (s *server) getDriver(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(w, r, "drivers.get")
	defer span.End()

	f, err := parseFormat(r)
	if err != nil {
		s.badRequest(w, span, err)
		return
	}
	code := mux.Vars(r)["code"]
	span.SetAttributes(attribute.String("code", code))
	if !codeRegex.MatchString(code) {
		s.badRequest(w, span,
			fmt.Errorf("%w: driver code must consist of 3 letters, got %q",
				errBadRequest, code))
		return
	}
	row, err := s.drivers.LoadByCode(ctx, strings.ToUpper(code))
	if errors.Is(err, api.ErrNotFound) {
		s.noData(w, span, fmt.Sprintf("driver %s not found", strings.ToUpper(code)))
		return
	}
	if err != nil {
		s.internalError(ctx, w, span, err)
		return
	}
	s.write(w, f, http.StatusOK, itemEnvelope[driverItem]{
		Response: toDriverItem(*row, 0),
	})
}

func (s *server) getVersion(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(w, r, "version")
	defer span.End()
	s.write(w, formatJSON, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

//nolint:whitespace // editor/linter issue
func (s *server) startSpan(w http.ResponseWriter, r *http.Request, name string) (
	context.Context, trace.Span,
) {
	ctx, span := s.tracer.Start(r.Context(), name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.RequestURI()),
		))
	if span.SpanContext().IsValid() {
		w.Header().Set(traceIDHeader, span.SpanContext().TraceID().String())
	}
	return ctx, span
}

//nolint:whitespace // editor/linter issue
func (s *server) listParams(w http.ResponseWriter, r *http.Request, span trace.Span) (
	f format, order racelog.Order, ok bool,
) {
	f, err := parseFormat(r)
	if err != nil {
		s.badRequest(w, span, err)
		return "", "", false
	}
	o, err := parseOrder(r)
	if err != nil {
		s.badRequest(w, span, err)
		return "", "", false
	}
	span.SetAttributes(attribute.String("order", string(o)))
	return f, o, true
}

func (s *server) badRequest(w http.ResponseWriter, span trace.Span, err error) {
	span.SetStatus(codes.Error, err.Error())
	s.writeError(w, http.StatusBadRequest, errWrongFormat,
		strings.TrimPrefix(err.Error(), errBadRequest.Error()+": "))
}

func (s *server) noData(w http.ResponseWriter, span trace.Span, msg string) {
	span.SetStatus(codes.Error, errNoData.Error())
	s.writeError(w, http.StatusNotFound, errNotFound, msg)
}

//nolint:whitespace // editor/linter issue
func (s *server) internalError(
	ctx context.Context,
	w http.ResponseWriter,
	span trace.Span,
	err error,
) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.GetFromContext(ctx).Error("request failed", log.ErrorField(err))
	s.writeError(w, http.StatusInternalServerError, errInternal, err.Error())
}
