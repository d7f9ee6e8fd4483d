package racelog

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	timeLayout = "15:04:05.000"
	dateLayout = "2006-01-02"
)

// ParseLogFile reads a start or end log. Line order is preserved.
func ParseLogFile(path string) ([]TimestampedEvent, error) {
	var ret []TimestampedEvent
	err := withFile(path, func(r io.Reader) error {
		var err error
		ret, err = ReadLog(r, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ReadLog parses log lines from r. name is only used in errors.
func ReadLog(r io.Reader, name string) ([]TimestampedEvent, error) {
	ret := []TimestampedEvent{}
	err := readLines(r, func(num int, line string) error {
		ev, err := ParseLogLine(line)
		if err != nil {
			return &LineError{Path: name, Line: num, Text: line, Err: err}
		}
		ret = append(ret, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ParseLogLine parses CODE followed by HH:MM:SS.mmm. A date of the form
// YYYY-MM-DD_ between code and time is accepted and dropped.
func ParseLogLine(line string) (TimestampedEvent, error) {
	line = strings.TrimSpace(line)
	if len(line) < codeLen || !isCode(line[:codeLen]) {
		code := line
		if len(code) > codeLen {
			code = code[:codeLen]
		}
		return TimestampedEvent{}, fmt.Errorf("%w: %q must be %d uppercase letters",
			ErrMalformedCode, code, codeLen)
	}
	code, rest := line[:codeLen], line[codeLen:]
	if len(rest) > len(timeLayout) {
		date, clock, found := strings.Cut(rest, "_")
		if !found {
			return TimestampedEvent{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, rest)
		}
		if _, err := time.Parse(dateLayout, date); err != nil {
			return TimestampedEvent{}, fmt.Errorf("%w: date %q", ErrMalformedTimestamp, date)
		}
		rest = clock
	}
	moment, err := ParseMoment(rest)
	if err != nil {
		return TimestampedEvent{}, err
	}
	return TimestampedEvent{Code: code, Moment: moment}, nil
}

// ParseMoment parses exactly HH:MM:SS.mmm into a time of day.
func ParseMoment(s string) (time.Time, error) {
	if !hasMomentShape(s) {
		return time.Time{}, fmt.Errorf("%w: %q does not match HH:MM:SS.mmm",
			ErrMalformedTimestamp, s)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, s, err)
	}
	return t, nil
}

func hasMomentShape(s string) bool {
	if len(s) != len(timeLayout) {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch i {
		case 2, 5:
			if s[i] != ':' {
				return false
			}
		case 8:
			if s[i] != '.' {
				return false
			}
		default:
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
	}
	return true
}
