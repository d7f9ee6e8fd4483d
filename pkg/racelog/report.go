package racelog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// QualifyingCutoff is the last rank that qualifies for the next session.
const QualifyingCutoff = 15

type Params struct {
	AbbreviationPath string
	StartLogPath     string
	EndLogPath       string
	Order            string
	Driver           string // code or full driver name, empty for all drivers
}

// Validate checks the parameters without touching the filesystem.
func (p Params) Validate() error {
	var errs []error
	check := func(name, value, ext string) {
		switch {
		case strings.TrimSpace(value) == "":
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		case !strings.EqualFold(filepath.Ext(value), ext):
			errs = append(errs, fmt.Errorf("%s %q must be a %s file", name, value, ext))
		}
	}
	check("abbreviation path", p.AbbreviationPath, ".txt")
	check("start log path", p.StartLogPath, ".log")
	check("end log path", p.EndLogPath, ".log")
	if _, err := ParseOrder(p.Order); err != nil {
		errs = append(errs, fmt.Errorf("order must be asc or desc, got %q", p.Order))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidReportParameters, errors.Join(errs...))
	}
	return nil
}

// BuildReport reads the three input files and returns the ranked report.
// Codes that cannot be joined are reported in Report.Warnings.
func BuildReport(p Params) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	order, _ := ParseOrder(p.Order)

	abbr, err := LoadAbbreviations(p.AbbreviationPath)
	if err != nil {
		return nil, err
	}
	starts, err := ParseLogFile(p.StartLogPath)
	if err != nil {
		return nil, err
	}
	ends, err := ParseLogFile(p.EndLogPath)
	if err != nil {
		return nil, err
	}

	return Assemble(abbr, starts, ends, order, p.Driver), nil
}

// Assemble joins already parsed input into a ranked report. It is the part of
// BuildReport after the files have been read.
//
//nolint:whitespace // editor/linter issue
func Assemble(
	abbr *Abbreviations,
	starts, ends []TimestampedEvent,
	order Order,
	driver string,
) *Report {
	records, warnings := join(abbr, starts, ends)
	rank(records)
	if driver = strings.TrimSpace(driver); driver != "" {
		records = lo.Filter(records, func(r LapRecord, _ int) bool {
			return strings.EqualFold(r.Code, driver) ||
				strings.EqualFold(r.DriverName, driver)
		})
		if len(records) > 1 {
			records = records[:1]
		}
	}
	if order == OrderDesc {
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Duration == records[j].Duration {
				return records[i].Rank < records[j].Rank
			}
			return records[i].Duration > records[j].Duration
		})
	}
	return &Report{Order: order, Records: records, Warnings: warnings}
}

// BuildReportText is BuildReport followed by Render.
func BuildReportText(p Params) (string, error) {
	r, err := BuildReport(p)
	if err != nil {
		return "", err
	}
	return r.Render(), nil
}

// join produces one record per abbreviation entry with exactly one start and
// one end event, in abbreviation file order.
func join(abbr *Abbreviations, starts, ends []TimestampedEvent) (
	[]LapRecord, []Warning,
) {
	startsByCode := lo.GroupBy(starts, func(e TimestampedEvent) string { return e.Code })
	endsByCode := lo.GroupBy(ends, func(e TimestampedEvent) string { return e.Code })

	records := make([]LapRecord, 0, abbr.Len())
	warnings := []Warning{}
	for _, entry := range abbr.entries {
		s, e := startsByCode[entry.Code], endsByCode[entry.Code]
		var reason ExclusionReason
		switch {
		case len(s) == 0:
			reason = ReasonMissingStart
		case len(e) == 0:
			reason = ReasonMissingEnd
		case len(s) > 1:
			reason = ReasonDuplicateStart
		case len(e) > 1:
			reason = ReasonDuplicateEnd
		}
		if reason != "" {
			warnings = append(warnings, Warning{Code: entry.Code, Reason: reason})
			continue
		}
		d, err := ComputeDuration(s[0].Moment, e[0].Moment)
		if err != nil {
			warnings = append(warnings,
				Warning{Code: entry.Code, Reason: ReasonInvalidInterval})
			continue
		}
		records = append(records, LapRecord{
			Code:       entry.Code,
			DriverName: entry.DriverName,
			Team:       entry.Team,
			Duration:   d,
		})
	}

	seen := map[string]bool{}
	for _, ev := range append(append([]TimestampedEvent{}, starts...), ends...) {
		if _, ok := abbr.index[ev.Code]; ok || seen[ev.Code] {
			continue
		}
		seen[ev.Code] = true
		warnings = append(warnings, Warning{Code: ev.Code, Reason: ReasonUnknownCode})
	}
	return records, warnings
}

// rank sorts records by ascending duration and assigns ranks starting at 1.
// Ties keep their incoming order.
func rank(records []LapRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Duration < records[j].Duration
	})
	for i := range records {
		records[i].Rank = i + 1
	}
}

// Qualified reports whether the record is within the qualifying cutoff.
func (r LapRecord) Qualified() bool {
	return r.Rank <= QualifyingCutoff
}

func (r LapRecord) FormattedDuration() string {
	return FormatDuration(r.Duration)
}
