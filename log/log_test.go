package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("rlr.test")
	l.Debug("hidden")
	l.Info("visible", String("code", "SVF"), Int("rank", 1))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "rlr.test", entry["logger"])
	assert.Equal(t, "SVF", entry["code"])
	assert.EqualValues(t, 1, entry["rank"])
}

func TestWithFilter(t *testing.T) {
	var buf bytes.Buffer
	opt, err := WithFilter("*:* -debug:rlr.sql")
	require.NoError(t, err)
	l := New(&buf, DebugLevel, opt)

	l.Named("rlr.sql").Debug("dropped")
	assert.Empty(t, buf.String())
	l.Named("rlr.sql").Info("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithFilterInvalid(t *testing.T) {
	_, err := WithFilter("loud:*")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Same(t, Default(), GetFromContext(context.Background()))

	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	ctx := AddToContext(context.Background(), l)
	assert.Same(t, l, GetFromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
