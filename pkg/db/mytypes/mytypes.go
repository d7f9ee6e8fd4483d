package mytypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

//nolint:tagliatelle // json is that way
type (
	// LapTime is persisted as bigint milliseconds
	LapTime time.Duration
	// we need this extra type to store the slice as jsonb
	WarningSlice []Warning
	Warning      struct {
		Code   string `json:"code"`
		Reason string `json:"reason"`
	}
)

func (l LapTime) Duration() time.Duration {
	return time.Duration(l)
}

func (l *LapTime) Scan(value any) error {
	switch v := value.(type) {
	case int64:
		*l = LapTime(time.Duration(v) * time.Millisecond)
	case int32:
		*l = LapTime(time.Duration(v) * time.Millisecond)
	default:
		return fmt.Errorf("value is not an integer: %T", value)
	}
	return nil
}

func (l LapTime) Value() (driver.Value, error) {
	return time.Duration(l).Milliseconds(), nil
}

func (h *WarningSlice) Scan(value any) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*h = nil
		return nil
	default:
		return fmt.Errorf("value is not []byte")
	}

	return json.Unmarshal(bytes, &h)
}

func (h WarningSlice) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}
