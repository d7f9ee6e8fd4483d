package mytypes

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestLapTime(t *testing.T) {
	l := LapTime(64415 * time.Millisecond)
	v, err := l.Value()
	assert.NilError(t, err)
	assert.Equal(t, v, int64(64415))

	var got LapTime
	assert.NilError(t, got.Scan(int64(64415)))
	assert.Equal(t, got.Duration(), 64415*time.Millisecond)

	assert.ErrorContains(t, got.Scan("64415"), "not an integer")
}

func TestWarningSlice(t *testing.T) {
	ws := WarningSlice{{Code: "DRR", Reason: "end is not after start"}}
	v, err := ws.Value()
	assert.NilError(t, err)

	var got WarningSlice
	assert.NilError(t, got.Scan(v))
	assert.DeepEqual(t, got, ws)

	assert.NilError(t, got.Scan(`[]`))
	assert.Check(t, is.Len(got, 0))

	empty, err := WarningSlice(nil).Value()
	assert.NilError(t, err)
	assert.DeepEqual(t, empty, []byte("[]"))
}
