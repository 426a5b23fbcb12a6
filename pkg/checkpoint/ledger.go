package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// RecordState is the per-record outcome persisted in the ledger. Ingestion is
// idempotent with or without the ledger; skipping completed records only
// saves the embedding calls on a resumed batch.
type RecordState struct {
	BatchID       string    `json:"batch_id"`
	QAID          string    `json:"qa_id"`
	ChunksCreated int       `json:"chunks_created"`
	ChunksSkipped int       `json:"chunks_skipped"`
	CompletedAt   time.Time `json:"completed_at"`
	Error         string    `json:"error,omitempty"`
}

// Ledger is a badger-backed record of which (batch, qa id) pairs have been
// fully applied.
type Ledger struct {
	db *badger.DB
}

// Open opens (or creates) a ledger at dir. An empty dir keeps the ledger
// purely in memory, which suits tests and one-shot runs.
func Open(dir string) (*Ledger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

func recordKey(batchID, qaID string) []byte {
	return []byte("batch/" + batchID + "/" + qaID)
}

// MarkDone records a completed record.
func (l *Ledger) MarkDone(ctx context.Context, state RecordState) error {
	if state.CompletedAt.IsZero() {
		state.CompletedAt = time.Now().UTC()
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal record state: %w", err)
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(state.BatchID, state.QAID), data)
	})
	if err != nil {
		return fmt.Errorf("write record state: %w", err)
	}
	return nil
}

// Done reports whether a record completed in a previous run of the batch.
func (l *Ledger) Done(ctx context.Context, batchID, qaID string) (bool, error) {
	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(recordKey(batchID, qaID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read record state: %w", err)
	}
	return true, nil
}

// BatchStates returns every recorded state for one batch.
func (l *Ledger) BatchStates(ctx context.Context, batchID string) ([]RecordState, error) {
	prefix := []byte("batch/" + batchID + "/")
	var out []RecordState

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var state RecordState
				if err := json.Unmarshal(val, &state); err != nil {
					return err
				}
				out = append(out, state)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list batch states: %w", err)
	}
	return out, nil
}

// Clear drops every record of one batch.
func (l *Ledger) Clear(ctx context.Context, batchID string) error {
	states, err := l.BatchStates(ctx, batchID)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		for _, s := range states {
			if err := txn.Delete(recordKey(batchID, s.QAID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
