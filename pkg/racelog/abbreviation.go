package racelog

import (
	"fmt"
	"io"
	"strings"
)

const (
	codeLen           = 3
	abbreviationParts = 3
)

// LoadAbbreviations reads an abbreviation file with lines of the form
// CODE_Driver Name_Team Name.
func LoadAbbreviations(path string) (*Abbreviations, error) {
	var ret *Abbreviations
	err := withFile(path, func(r io.Reader) error {
		var err error
		ret, err = ReadAbbreviations(r, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ReadAbbreviations parses abbreviation lines from r. name is only used in errors.
func ReadAbbreviations(r io.Reader, name string) (*Abbreviations, error) {
	ret := &Abbreviations{index: map[string]int{}}
	err := readLines(r, func(num int, line string) error {
		entry, err := ParseAbbreviation(line)
		if err != nil {
			return &LineError{Path: name, Line: num, Text: line, Err: err}
		}
		if _, ok := ret.index[entry.Code]; ok {
			return &LineError{
				Path: name, Line: num, Text: line,
				Err: fmt.Errorf("%w: %s", ErrDuplicateCode, entry.Code),
			}
		}
		ret.index[entry.Code] = len(ret.entries)
		ret.entries = append(ret.entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func ParseAbbreviation(line string) (AbbreviationEntry, error) {
	parts := strings.Split(strings.TrimSpace(line), "_")
	if len(parts) != abbreviationParts {
		return AbbreviationEntry{}, fmt.Errorf("%w: want %d underscore separated fields, got %d",
			ErrMalformedAbbreviation, abbreviationParts, len(parts))
	}
	code := strings.TrimSpace(parts[0])
	if !isCode(code) {
		return AbbreviationEntry{}, fmt.Errorf("%w: code %q must be %d uppercase letters",
			ErrMalformedAbbreviation, code, codeLen)
	}
	name, team := strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if name == "" || team == "" {
		return AbbreviationEntry{}, fmt.Errorf("%w: empty driver or team name",
			ErrMalformedAbbreviation)
	}
	return AbbreviationEntry{Code: code, DriverName: name, Team: team}, nil
}

func isCode(s string) bool {
	if len(s) != codeLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
