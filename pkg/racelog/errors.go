package racelog

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReportParameters = errors.New("invalid report parameters")
	ErrMalformedAbbreviation   = errors.New("malformed abbreviation")
	ErrMalformedCode           = errors.New("malformed driver code")
	ErrMalformedTimestamp      = errors.New("malformed timestamp")
	ErrInvalidInterval         = errors.New("end is not after start")
	ErrDuplicateCode           = errors.New("duplicate driver code")
)

// LineError locates a parse failure within an input file.
// Unwrap yields one of the sentinel errors above.
type LineError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v (line %q)", e.Path, e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
