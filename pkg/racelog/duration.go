package racelog

import (
	"fmt"
	"time"
)

// ComputeDuration returns end-start. Both moments must lie on the same day.
func ComputeDuration(start, end time.Time) (time.Duration, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: start %s, end %s", ErrInvalidInterval,
			start.Format(timeLayout), end.Format(timeLayout))
	}
	return end.Sub(start).Truncate(time.Millisecond), nil
}

// FormatDuration renders d as M:SS.mmm
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
