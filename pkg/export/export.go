// Package export renders a report in machine readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/racelog-report/pkg/racelog"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = fmt.Errorf("unknown format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (use text, json, yaml or xlsx)", ErrUnknownFormat, s)
	}
}

type Record struct {
	Rank       int    `json:"rank" yaml:"rank"`
	Code       string `json:"code" yaml:"code"`
	Driver     string `json:"driver" yaml:"driver"`
	Team       string `json:"team" yaml:"team"`
	Duration   string `json:"duration" yaml:"duration"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
	Qualified  bool   `json:"qualified" yaml:"qualified"`
}

type Document struct {
	Order    string   `json:"order" yaml:"order"`
	Records  []Record `json:"records" yaml:"records"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func FromReport(r *racelog.Report) Document {
	return Document{
		Order: string(r.Order),
		Records: lo.Map(r.Records, func(rec racelog.LapRecord, _ int) Record {
			return Record{
				Rank:       rec.Rank,
				Code:       rec.Code,
				Driver:     rec.DriverName,
				Team:       rec.Team,
				Duration:   rec.FormattedDuration(),
				DurationMs: rec.Duration.Milliseconds(),
				Qualified:  rec.Qualified(),
			}
		}),
		Warnings: lo.Map(r.Warnings, func(w racelog.Warning, _ int) string {
			return w.String()
		}),
	}
}

// Write renders r to w in the requested format.
func Write(w io.Writer, f Format, r *racelog.Report) error {
	switch f {
	case FormatText:
		return Text(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	case FormatXLSX:
		return XLSX(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func Text(w io.Writer, r *racelog.Report) error {
	text := r.Render()
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}

func JSON(w io.Writer, r *racelog.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromReport(r))
}

func YAML(w io.Writer, r *racelog.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromReport(r)); err != nil {
		return err
	}
	return enc.Close()
}
