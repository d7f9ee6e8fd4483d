package rest

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
)

type format string

const (
	formatJSON format = "json"
	formatXML  format = "xml"
)

const (
	errNotFound    = "Not Found"
	errWrongFormat = "Wrong format"
	errInternal    = "Internal Server Error"
	errNotAllowed  = "Method Not Allowed"

	msgFormatRequired = "Format must be specified as json or xml"
)

var (
	errBadRequest = errors.New("bad request")
	errNoData     = errors.New("no data")
)

//nolint:tagliatelle // field names are part of the API
type (
	reportItem struct {
		ID         int32           `json:"id" xml:"id"`
		Position   int32           `json:"position" xml:"position"`
		Code       string          `json:"code" xml:"code"`
		DriverName string          `json:"driver_name" xml:"driver_name"`
		Team       string          `json:"team" xml:"team"`
		Timestamp  string          `json:"timestamp" xml:"timestamp"`
		Seconds    decimal.Decimal `json:"seconds" xml:"seconds"`
	}
	driverItem struct {
		ID         int32  `json:"id" xml:"id"`
		Code       string `json:"code" xml:"code"`
		DriverName string `json:"driver_name" xml:"driver_name"`
		Team       string `json:"team" xml:"team"`
	}
	listEnvelope[T any] struct {
		XMLName  xml.Name `json:"-" xml:"response"`
		Response []T      `json:"response" xml:"item"`
	}
	itemEnvelope[T any] struct {
		XMLName  xml.Name `json:"-" xml:"response"`
		Response T        `json:"response" xml:"item"`
	}
	errorBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
)

func toReportItem(row model.ReportRow, _ int) reportItem {
	d := row.Duration.Duration()
	return reportItem{
		ID:         row.ID,
		Position:   row.Position,
		Code:       row.Code,
		DriverName: row.DriverName,
		Team:       row.Team,
		Timestamp:  racelog.FormatDuration(d),
		Seconds:    decimal.New(d.Milliseconds(), -3),
	}
}

func toDriverItem(row model.DriverRow, _ int) driverItem {
	return driverItem{
		ID:         row.ID,
		Code:       row.Code,
		DriverName: row.DriverName,
		Team:       row.Team,
	}
}

// parseFormat reads the mandatory format query parameter
func parseFormat(r *http.Request) (format, error) {
	switch f := format(strings.ToLower(r.URL.Query().Get("format"))); f {
	case formatJSON, formatXML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", errBadRequest, msgFormatRequired)
	}
}

// parseOrder reads the optional order query parameter, asc by default
func parseOrder(r *http.Request) (racelog.Order, error) {
	v := strings.ToLower(r.URL.Query().Get("order"))
	if v == "" {
		return racelog.OrderAsc, nil
	}
	o, err := racelog.ParseOrder(v)
	if err != nil {
		return "", fmt.Errorf("%w: order must be asc or desc", errBadRequest)
	}
	return o, nil
}

func (s *server) write(w http.ResponseWriter, f format, status int, body any) {
	var (
		data []byte
		err  error
	)
	switch f {
	case formatXML:
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		data, err = xml.Marshal(body)
		if err == nil {
			data = append([]byte(xml.Header), data...)
		}
	default:
		w.Header().Set("Content-Type", "application/json")
		data, err = json.Marshal(body)
	}
	if err != nil {
		s.log.Error("could not encode response", log.ErrorField(err))
		s.writeError(w, http.StatusInternalServerError, errInternal, err.Error())
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Debug("could not write response", log.ErrorField(err))
	}
}

// error responses are always json
func (s *server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Error: kind, Message: msg}); err != nil {
		s.log.Debug("could not write error response", log.ErrorField(err))
	}
}

func (s *server) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, errNotFound,
		fmt.Sprintf("%s not found", r.URL.Path))
}

func (s *server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, errNotAllowed,
		fmt.Sprintf("method %s not allowed", r.Method))
}
