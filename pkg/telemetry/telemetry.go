package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// Event is one recorded operation, stored as a Parquet row.
type Event struct {
	ID         string    `parquet:"id"`
	Timestamp  time.Time `parquet:"timestamp"`
	Operation  string    `parquet:"operation"`
	SessionID  string    `parquet:"session_id"`
	DurationMs int64     `parquet:"duration_ms"`
	Records    int       `parquet:"records"`
	Chunks     int       `parquet:"chunks"`
	Errors     int       `parquet:"errors"`
	Error      string    `parquet:"error"`
}

// Recorder buffers operation events and writes them out as Parquet files. A
// nil Recorder is a valid no-op, so callers record unconditionally.
type Recorder struct {
	outputDir string
	batchSize int
	logger    *slog.Logger

	mu     sync.Mutex
	buffer []Event
}

// NewRecorder creates a recorder writing into outputDir. A nil logger falls
// back to slog.Default().
func NewRecorder(outputDir string, logger *slog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		outputDir: outputDir,
		batchSize: 100,
		logger:    logger,
		buffer:    make([]Event, 0, 100),
	}, nil
}

// Record buffers one event, flushing when the batch fills.
func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, event)
	if len(r.buffer) >= r.batchSize {
		r.flush()
	}
}

// Operation times fn and records the outcome under the given name.
func (r *Recorder) Operation(name, sessionID string, fn func() (records, chunks, errs int, err error)) error {
	start := time.Now()
	records, chunks, errs, err := fn()

	event := Event{
		Operation:  name,
		SessionID:  sessionID,
		DurationMs: time.Since(start).Milliseconds(),
		Records:    records,
		Chunks:     chunks,
		Errors:     errs,
	}
	if err != nil {
		event.Error = err.Error()
	}
	r.Record(event)
	return err
}

// Flush writes any buffered events to a new Parquet file.
func (r *Recorder) Flush() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flush()
}

// flush writes the buffer. Caller must hold the lock.
func (r *Recorder) flush() {
	if len(r.buffer) == 0 {
		return
	}

	filename := fmt.Sprintf("events_%s_%d.parquet",
		time.Now().UTC().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		// telemetry must never take down the operation it observes
		r.logger.Warn("failed to write telemetry parquet file", "path", path, "error", err)
		return
	}
	r.buffer = r.buffer[:0]
}

// Close flushes any remaining events.
func (r *Recorder) Close() {
	r.Flush()
}
