package racelog

import (
	"fmt"
	"time"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", fmt.Errorf("%w: order must be asc or desc, got %q",
			ErrInvalidReportParameters, s)
	}
}

type AbbreviationEntry struct {
	Code       string
	DriverName string
	Team       string
}

// Abbreviations keeps the entries in file order together with a code index.
type Abbreviations struct {
	entries []AbbreviationEntry
	index   map[string]int
}

func (a *Abbreviations) Len() int {
	return len(a.entries)
}

// Entries returns a copy of the entries in file order.
func (a *Abbreviations) Entries() []AbbreviationEntry {
	ret := make([]AbbreviationEntry, len(a.entries))
	copy(ret, a.entries)
	return ret
}

func (a *Abbreviations) Lookup(code string) (AbbreviationEntry, bool) {
	idx, ok := a.index[code]
	if !ok {
		return AbbreviationEntry{}, false
	}
	return a.entries[idx], true
}

// TimestampedEvent is one line of a start or end log.
// Moment holds the time of day only (year 0, UTC).
type TimestampedEvent struct {
	Code   string
	Moment time.Time
}

type LapRecord struct {
	Rank       int
	Code       string
	DriverName string
	Team       string
	Duration   time.Duration
}

type ExclusionReason string

const (
	ReasonMissingStart    ExclusionReason = "missing start event"
	ReasonMissingEnd      ExclusionReason = "missing end event"
	ReasonDuplicateStart  ExclusionReason = "more than one start event"
	ReasonDuplicateEnd    ExclusionReason = "more than one end event"
	ReasonUnknownCode     ExclusionReason = "code not in abbreviation table"
	ReasonInvalidInterval ExclusionReason = "end is not after start"
)

// Warning describes a code that was left out of the report.
type Warning struct {
	Code   string
	Reason ExclusionReason
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Reason)
}

type Report struct {
	Order    Order
	Records  []LapRecord
	Warnings []Warning
}
