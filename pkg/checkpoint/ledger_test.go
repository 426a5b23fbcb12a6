package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLedgerMarkAndCheck(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	done, err := l.Done(ctx, "batch_1", "qa_pair_001")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, l.MarkDone(ctx, RecordState{
		BatchID: "batch_1", QAID: "qa_pair_001", ChunksCreated: 3,
	}))

	done, err = l.Done(ctx, "batch_1", "qa_pair_001")
	require.NoError(t, err)
	assert.True(t, done)

	// other batches are unaffected
	done, err = l.Done(ctx, "batch_2", "qa_pair_001")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestLedgerBatchStates(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	require.NoError(t, l.MarkDone(ctx, RecordState{BatchID: "b", QAID: "qa_pair_001", ChunksCreated: 2}))
	require.NoError(t, l.MarkDone(ctx, RecordState{BatchID: "b", QAID: "qa_pair_002", Error: "embed failed"}))

	states, err := l.BatchStates(ctx, "b")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "qa_pair_001", states[0].QAID)
	assert.Equal(t, 2, states[0].ChunksCreated)
	assert.False(t, states[0].CompletedAt.IsZero())
	assert.Equal(t, "embed failed", states[1].Error)
}

func TestLedgerClear(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	require.NoError(t, l.MarkDone(ctx, RecordState{BatchID: "b", QAID: "qa_pair_001"}))
	require.NoError(t, l.Clear(ctx, "b"))

	done, err := l.Done(ctx, "b", "qa_pair_001")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestLedgerOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	l, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, l.MarkDone(ctx, RecordState{BatchID: "b", QAID: "qa_pair_001"}))
	require.NoError(t, l.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	done, err := reopened.Done(ctx, "b", "qa_pair_001")
	require.NoError(t, err)
	assert.True(t, done)
}
