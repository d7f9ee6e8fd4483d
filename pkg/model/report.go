package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racelog-report/pkg/db/mytypes"
)

// ImportRun describes one execution of the importer.
type ImportRun struct {
	ID            uuid.UUID            `db:"id"`
	ImportedAt    time.Time            `db:"imported_at"`
	Abbreviations string               `db:"abbreviations"`
	StartLog      string               `db:"start_log"`
	EndLog        string               `db:"end_log"`
	Checksum      string               `db:"checksum"`
	Records       int32                `db:"records"`
	Warnings      mytypes.WarningSlice `db:"warnings"`
}

// ReportRow is one ranked lap as stored in the report table.
type ReportRow struct {
	ID         int32           `db:"id"`
	RunID      uuid.UUID       `db:"run_id"`
	Position   int32           `db:"position"`
	Code       string          `db:"code"`
	DriverName string          `db:"driver_name"`
	Team       string          `db:"team"`
	Duration   mytypes.LapTime `db:"duration_ms"`
}

type DriverRow struct {
	ID         int32     `db:"id"`
	RunID      uuid.UUID `db:"run_id"`
	Code       string    `db:"code"`
	DriverName string    `db:"driver_name"`
	Team       string    `db:"team"`
}
