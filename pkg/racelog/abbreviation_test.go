package racelog

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbbreviation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    AbbreviationEntry
		wantErr error
	}{
		{
			name: "valid",
			line: "SVF_Sebastian Vettel_FERRARI",
			want: AbbreviationEntry{Code: "SVF", DriverName: "Sebastian Vettel", Team: "FERRARI"},
		},
		{
			name: "surrounding whitespace",
			line: "  LHM_Lewis Hamilton_MERCEDES  ",
			want: AbbreviationEntry{Code: "LHM", DriverName: "Lewis Hamilton", Team: "MERCEDES"},
		},
		{name: "two fields", line: "SVF_Sebastian Vettel", wantErr: ErrMalformedAbbreviation},
		{name: "four fields", line: "SVF_Sebastian_Vettel_FERRARI", wantErr: ErrMalformedAbbreviation},
		{name: "short code", line: "SV_Sebastian Vettel_FERRARI", wantErr: ErrMalformedAbbreviation},
		{name: "long code", line: "SVFX_Sebastian Vettel_FERRARI", wantErr: ErrMalformedAbbreviation},
		{name: "lowercase code", line: "svf_Sebastian Vettel_FERRARI", wantErr: ErrMalformedAbbreviation},
		{name: "empty team", line: "SVF_Sebastian Vettel_", wantErr: ErrMalformedAbbreviation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAbbreviation(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadAbbreviations(t *testing.T) {
	abbr, err := LoadAbbreviations("testdata/abbreviations.txt")
	require.NoError(t, err)
	assert.Equal(t, 19, abbr.Len())

	codes := map[string]bool{}
	for _, e := range abbr.Entries() {
		assert.False(t, codes[e.Code], "duplicate code %s", e.Code)
		codes[e.Code] = true
	}
	entry, ok := abbr.Lookup("KRF")
	require.True(t, ok)
	assert.Equal(t, "Kimi Räikkönen", entry.DriverName)
	assert.Equal(t, "FERRARI", entry.Team)
	assert.Equal(t, "DRR", abbr.Entries()[0].Code)

	_, ok = abbr.Lookup("XXX")
	assert.False(t, ok)
}

func TestReadAbbreviationsBOMAndCRLF(t *testing.T) {
	in := "\ufeffSVF_Sebastian Vettel_FERRARI\r\n\r\nLHM_Lewis Hamilton_MERCEDES\r\n"
	abbr, err := ReadAbbreviations(strings.NewReader(in), "inline")
	require.NoError(t, err)
	assert.Equal(t, 2, abbr.Len())
	assert.Equal(t, "SVF", abbr.Entries()[0].Code)
	assert.Equal(t, "MERCEDES", abbr.Entries()[1].Team)
}

func TestReadAbbreviationsDuplicate(t *testing.T) {
	in := "SVF_Sebastian Vettel_FERRARI\nSVF_Someone Else_WILLIAMS\n"
	_, err := ReadAbbreviations(strings.NewReader(in), "inline")
	require.ErrorIs(t, err, ErrDuplicateCode)

	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
	assert.Equal(t, "inline", lineErr.Path)
}

func TestReadAbbreviationsMalformedAborts(t *testing.T) {
	in := "SVF_Sebastian Vettel_FERRARI\nbroken line\nLHM_Lewis Hamilton_MERCEDES\n"
	abbr, err := ReadAbbreviations(strings.NewReader(in), "inline")
	assert.Nil(t, abbr)
	assert.ErrorIs(t, err, ErrMalformedAbbreviation)
	assert.Contains(t, err.Error(), "inline:2")
}

func TestLoadAbbreviationsMissingFile(t *testing.T) {
	_, err := LoadAbbreviations("testdata/does-not-exist.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrMalformedAbbreviation)
}
