package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/racelog-report/pkg/racelog"
)

func sampleReport() *racelog.Report {
	return &racelog.Report{
		Order: racelog.OrderAsc,
		Records: []racelog.LapRecord{
			{
				Rank: 1, Code: "SVF", DriverName: "Sebastian Vettel", Team: "FERRARI",
				Duration: 64415 * time.Millisecond,
			},
			{
				Rank: 16, Code: "MES", DriverName: "Marcus Ericsson", Team: "SAUBER FERRARI",
				Duration: 73265 * time.Millisecond,
			},
		},
		Warnings: []racelog.Warning{{Code: "DRR", Reason: racelog.ReasonInvalidInterval}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "asc", doc.Order)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, Record{
		Rank: 1, Code: "SVF", Driver: "Sebastian Vettel", Team: "FERRARI",
		Duration: "1:04.415", DurationMs: 64415, Qualified: true,
	}, doc.Records[0])
	assert.False(t, doc.Records[1].Qualified)
	assert.Equal(t, []string{"DRR: end is not after start"}, doc.Warnings)
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleReport()))
	assert.Contains(t, buf.String(), "duration_ms: 64415")

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "MES", doc.Records[1].Code)
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleReport()))
	assert.Equal(t, sampleReport().Render()+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Text(&buf, &racelog.Report{}))
	assert.Empty(t, buf.String())
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleReport()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	cells := map[string]string{
		"A1": "Pos", "E1": "Time",
		"A2": "1", "B2": "SVF", "C2": "Sebastian Vettel", "E2": "1:04.415",
		"A3": "16", "D3": "SAUBER FERRARI",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, Format("pdf"), sampleReport()), ErrUnknownFormat)
}
