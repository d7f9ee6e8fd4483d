package racelog

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Delimiter separates the qualifying ranks from the rest.
const Delimiter = "------------------------------------------------------------------------"

// Render returns the fixed-width text report. Lines are separated by \n
// without a trailing newline. The delimiter is placed between the records
// ranked QualifyingCutoff and QualifyingCutoff+1 when both are present.
func (r *Report) Render() string {
	if len(r.Records) == 0 {
		return ""
	}
	rankWidth, nameWidth, teamWidth := 0, 0, 0
	for i := range r.Records {
		rec := &r.Records[i]
		rankWidth = max(rankWidth, len(strconv.Itoa(rec.Rank)))
		nameWidth = max(nameWidth, utf8.RuneCountInString(rec.DriverName))
		teamWidth = max(teamWidth, utf8.RuneCountInString(rec.Team))
	}

	lines := make([]string, 0, len(r.Records)+1)
	for i := range r.Records {
		rec := &r.Records[i]
		if i > 0 && crossesCutoff(r.Records[i-1].Rank, rec.Rank) {
			lines = append(lines, Delimiter)
		}
		lines = append(lines, padLeft(strconv.Itoa(rec.Rank), rankWidth)+". "+
			padRight(rec.DriverName, nameWidth)+" | "+
			padRight(rec.Team, teamWidth)+" | "+
			rec.FormattedDuration())
	}
	return strings.Join(lines, "\n")
}

func crossesCutoff(prev, cur int) bool {
	return (prev == QualifyingCutoff && cur == QualifyingCutoff+1) ||
		(prev == QualifyingCutoff+1 && cur == QualifyingCutoff)
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
