package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".parquet" {
			out = append(out, e.Name())
		}
	}
	return out
}

func TestRecorderFlushWritesFile(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, nil)
	require.NoError(t, err)

	r.Record(Event{Operation: "ingest", SessionID: "session_001", Records: 4, Chunks: 9})
	assert.Empty(t, parquetFiles(t, dir))

	r.Flush()
	assert.Len(t, parquetFiles(t, dir), 1)

	// nothing buffered, second flush writes nothing new
	r.Flush()
	assert.Len(t, parquetFiles(t, dir), 1)
}

func TestRecorderOperation(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, nil)
	require.NoError(t, err)

	wantErr := errors.New("boom")
	gotErr := r.Operation("search", "session_001", func() (int, int, int, error) {
		return 1, 0, 0, wantErr
	})
	assert.Equal(t, wantErr, gotErr)

	r.Close()
	assert.Len(t, parquetFiles(t, dir), 1)
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	r.Record(Event{Operation: "ingest"})
	r.Flush()
}
