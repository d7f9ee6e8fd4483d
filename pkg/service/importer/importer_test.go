package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racelog-report/pkg/racelog"
	"github.com/mpapenbr/racelog-report/pkg/utils"
	"github.com/mpapenbr/racelog-report/testsupport/memrepo"
)

const testdata = "../../racelog/testdata"

// copies the race input into a temp dir so tests may modify it
func sampleSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"abbreviations.txt", "start.log", "end.log"} {
		data, err := os.ReadFile(filepath.Join(testdata, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	return Sources{
		Abbreviations: filepath.Join(dir, "abbreviations.txt"),
		StartLog:      filepath.Join(dir, "start.log"),
		EndLog:        filepath.Join(dir, "end.log"),
	}
}

func newImporter(store *memrepo.Store, src Sources, opts ...Option) *Importer {
	return New(store, store, src,
		append([]Option{WithRetryOptions(utils.WithRetryInterval(time.Millisecond))},
			opts...)...)
}

func TestImport(t *testing.T) {
	store := memrepo.New()
	src := sampleSources(t)
	fixed := time.Date(2018, 5, 24, 13, 0, 0, 0, time.UTC)
	imp := newImporter(store, src, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	run, err := imp.Import(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(18), run.Records)
	assert.Equal(t, fixed, run.ImportedAt)
	require.Len(t, run.Warnings, 1)
	assert.Equal(t, "DRR", run.Warnings[0].Code)

	rows, err := store.Report().LoadAll(ctx, racelog.OrderAsc)
	require.NoError(t, err)
	require.Len(t, rows, 18)
	assert.Equal(t, "SVF", rows[0].Code)
	assert.Equal(t, 64415*time.Millisecond, rows[0].Duration.Duration())
	assert.Equal(t, run.ID, rows[0].RunID)

	drivers, err := store.Driver().LoadAll(ctx, racelog.OrderAsc)
	require.NoError(t, err)
	assert.Len(t, drivers, 19, "all abbreviation entries are stored")
}

func TestImportReplacesPrevious(t *testing.T) {
	store := memrepo.New()
	imp := newImporter(store, sampleSources(t))
	ctx := context.Background()

	_, err := imp.Import(ctx)
	require.NoError(t, err)
	second, err := imp.Import(ctx)
	require.NoError(t, err)

	rows, _ := store.Report().LoadAll(ctx, racelog.OrderAsc)
	assert.Len(t, rows, 18)
	for i := range rows {
		assert.Equal(t, second.ID, rows[i].RunID)
	}
	assert.Len(t, store.Runs(), 2)
}

func TestImportIfEmpty(t *testing.T) {
	store := memrepo.New()
	imp := newImporter(store, sampleSources(t))
	ctx := context.Background()

	imported, err := imp.ImportIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, imported)

	imported, err = imp.ImportIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, imported)
	assert.Len(t, store.Runs(), 1)
}

func TestImportIfChanged(t *testing.T) {
	store := memrepo.New()
	src := sampleSources(t)
	imp := newImporter(store, src)
	ctx := context.Background()

	imported, err := imp.ImportIfChanged(ctx)
	require.NoError(t, err)
	assert.True(t, imported, "nothing imported yet")

	imported, err = imp.ImportIfChanged(ctx)
	require.NoError(t, err)
	assert.False(t, imported)

	f, err := os.OpenFile(src.EndLog, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	imported, err = imp.ImportIfChanged(ctx)
	require.NoError(t, err)
	assert.True(t, imported)
}

func TestImportMalformedInput(t *testing.T) {
	store := memrepo.New()
	src := sampleSources(t)
	require.NoError(t, os.WriteFile(src.StartLog, []byte("SVF25:61:00.000\n"), 0o600))
	imp := newImporter(store, src)

	_, err := imp.Import(context.Background())
	require.ErrorIs(t, err, racelog.ErrMalformedTimestamp)
	num, _ := store.Report().Count(context.Background())
	assert.Zero(t, num)
}

func TestImportRollback(t *testing.T) {
	store := memrepo.New()
	imp := newImporter(store, sampleSources(t))
	ctx := context.Background()
	_, err := imp.Import(ctx)
	require.NoError(t, err)

	errDB := errors.New("db down")
	store.Err = errDB
	_, err = imp.Import(ctx)
	require.ErrorIs(t, err, errDB)

	store.Err = nil
	num, err := store.Report().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 18, num, "previous import survives a failed one")
}

func TestImportMissingFile(t *testing.T) {
	store := memrepo.New()
	src := sampleSources(t)
	src.EndLog = filepath.Join(t.TempDir(), "missing.log")
	imp := newImporter(store, src)

	_, err := imp.Import(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

// startLogWithout returns the sample start log without the lines of code
func startLogWithout(t *testing.T, code string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdata, "start.log"))
	require.NoError(t, err)
	ret := []byte{}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 || bytes.HasPrefix(line, []byte(code)) {
			continue
		}
		ret = append(ret, line...)
		ret = append(ret, '\n')
	}
	return ret
}

func TestImportChecksumMatchesImportedContent(t *testing.T) {
	store := memrepo.New()
	src := sampleSources(t)
	imp := newImporter(store, src)
	ctx := context.Background()

	// the start log is rewritten right after it was read for the import
	changed := startLogWithout(t, "SVF")
	rewritten := false
	imp.readFile = func(name string) ([]byte, error) {
		data, err := os.ReadFile(name)
		if err == nil && name == src.StartLog && !rewritten {
			rewritten = true
			require.NoError(t, os.WriteFile(src.StartLog, changed, 0o600))
		}
		return data, err
	}

	run, err := imp.Import(ctx)
	require.NoError(t, err)
	require.True(t, rewritten)
	assert.Equal(t, int32(18), run.Records)
	current, err := utils.HashFiles(src.Abbreviations, src.StartLog, src.EndLog)
	require.NoError(t, err)
	assert.NotEqual(t, current, run.Checksum, "checksum describes the imported bytes")

	imported, err := imp.ImportIfChanged(ctx)
	require.NoError(t, err)
	assert.True(t, imported, "the rewrite is picked up by the next check")
	rows, err := store.Report().LoadAll(ctx, racelog.OrderAsc)
	require.NoError(t, err)
	assert.Len(t, rows, 17)

	imported, err = imp.ImportIfChanged(ctx)
	require.NoError(t, err)
	assert.False(t, imported)
}

func TestWatch(t *testing.T) {
	store := memrepo.New()
	src := sampleSources(t)
	imp := newImporter(store, src, WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := imp.Import(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- imp.Watch(ctx) }()

	// replace the start log with one that drops SVF
	changed := startLogWithout(t, "SVF")
	// the watcher may not be registered yet, so keep writing until noticed
	assert.Eventually(t, func() bool {
		if err := os.WriteFile(src.StartLog, changed, 0o600); err != nil {
			return false
		}
		time.Sleep(50 * time.Millisecond)
		return len(store.Runs()) > 1
	}, 5*time.Second, 10*time.Millisecond)

	rows, err := store.Report().LoadAll(ctx, racelog.OrderAsc)
	require.NoError(t, err)
	assert.Len(t, rows, 17)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
