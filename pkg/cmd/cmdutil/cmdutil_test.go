package cmdutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, log.WarnLevel, ParseLogLevel("warn", log.InfoLevel))
	assert.Equal(t, log.InfoLevel, ParseLogLevel("loud", log.InfoLevel))
}

func TestNewLogger(t *testing.T) {
	defer func(format, filter string) {
		config.LogFormat, config.LogFilter = format, filter
	}(config.LogFormat, config.LogFilter)

	config.LogFormat = "json"
	config.LogFilter = "*:* -debug:rlr.sql"
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, log.DebugLevel)
	require.NoError(t, err)
	logger.Named("rlr.sql").Debug("hidden")
	logger.Named("rlr").Debug("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)

	config.LogFilter = "loud:*"
	_, err = NewLogger(&buf, log.DebugLevel)
	assert.Error(t, err)
}

func TestConfiguredSources(t *testing.T) {
	defer func(a, s, e string) {
		config.AbbreviationsFile, config.StartLogFile, config.EndLogFile = a, s, e
	}(config.AbbreviationsFile, config.StartLogFile, config.EndLogFile)

	config.AbbreviationsFile = "a.txt"
	config.StartLogFile = "s.log"
	config.EndLogFile = "e.log"
	src := ConfiguredSources()
	assert.Equal(t, "a.txt", src.Abbreviations)
	assert.Equal(t, "s.log", src.StartLog)
	assert.Equal(t, "e.log", src.EndLog)
}
