package basedata

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/db/mytypes"
	"github.com/mpapenbr/racelog-report/pkg/model"
	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/repository/bob/importrun"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2018-05-24T12:00:00Z")
	return t
}

func SampleEntries() []racelog.AbbreviationEntry {
	return []racelog.AbbreviationEntry{
		{Code: "SVF", DriverName: "Sebastian Vettel", Team: "FERRARI"},
		{Code: "LHM", DriverName: "Lewis Hamilton", Team: "MERCEDES"},
		{Code: "KRF", DriverName: "Kimi Räikkönen", Team: "FERRARI"},
	}
}

// SampleRecords returns the ranked records matching SampleEntries.
func SampleRecords() []racelog.LapRecord {
	return []racelog.LapRecord{
		{
			Rank: 1, Code: "SVF", DriverName: "Sebastian Vettel", Team: "FERRARI",
			Duration: 64415 * time.Millisecond,
		},
		{
			Rank: 2, Code: "LHM", DriverName: "Lewis Hamilton", Team: "MERCEDES",
			Duration: 72460 * time.Millisecond,
		},
		{
			Rank: 3, Code: "KRF", DriverName: "Kimi Räikkönen", Team: "FERRARI",
			Duration: 72639 * time.Millisecond,
		},
	}
}

func SampleImportRun() *model.ImportRun {
	return &model.ImportRun{
		ID:            uuid.Must(uuid.NewV4()),
		ImportedAt:    TestTime(),
		Abbreviations: "abbreviations.txt",
		StartLog:      "start.log",
		EndLog:        "end.log",
		Checksum:      "abc",
		Records:       int32(len(SampleRecords())),
		Warnings: mytypes.WarningSlice{
			{Code: "DRR", Reason: string(racelog.ReasonInvalidInterval)},
		},
	}
}

// CreateSampleImportRun stores a new import run, the returned entry carries its id.
func CreateSampleImportRun(db bob.Executor) *model.ImportRun {
	run := SampleImportRun()
	if err := importrun.NewImportRunRepository(db).
		Create(context.Background(), run); err != nil {
		log.Fatal("CreateSampleImportRun", log.ErrorField(err))
	}
	return run
}
