package personaforge

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/soundprediction/personaforge/pkg/checkpoint"
	"github.com/soundprediction/personaforge/pkg/chunker"
	"github.com/soundprediction/personaforge/pkg/types"
)

// Ingest implements PersonaForge. A malformed entry or a failed embedding
// never fails the batch; each record's outcome lands in the result and the
// rest of the batch proceeds.
func (c *Client) Ingest(ctx context.Context, content string) (*types.BatchResult, error) {
	var result *types.BatchResult
	err := c.config.Telemetry.Operation("ingest", c.config.SessionID, func() (int, int, int, error) {
		var err error
		result, err = c.ingest(ctx, content)
		if err != nil {
			return 0, 0, 1, err
		}
		chunks := 0
		for _, r := range result.Results {
			chunks += r.ChunksCreated
		}
		return result.Successful, chunks, result.Errors, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ingest(ctx context.Context, content string) (*types.BatchResult, error) {
	records, entryErrs, err := c.ingestor.Parse(content)
	if err != nil {
		return nil, err
	}

	// The batch id is derived from the content so a re-run of the same file
	// resumes against the same ledger entries.
	batchID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(content)).String()

	result := &types.BatchResult{Total: len(records) + len(entryErrs)}
	for _, ee := range entryErrs {
		result.Errors++
		result.Results = append(result.Results, types.RecordStatus{
			EntryIndex: ee.Index,
			Error:      ee.Err.Error(),
		})
	}

	if len(records) > 0 {
		if err := c.builder.EnsureClientSession(ctx, c.config.ClientID, c.config.SessionID); err != nil {
			return nil, fmt.Errorf("ensure client and session: %w", err)
		}
	}

	for i, rec := range records {
		status := c.ingestRecord(ctx, batchID, rec)
		status.EntryIndex = i + 1
		if status.Error == "" {
			result.Successful++
		} else {
			result.Errors++
		}
		result.Results = append(result.Results, status)
	}

	c.logger.Info("batch ingested",
		"session_id", c.config.SessionID,
		"total", result.Total,
		"successful", result.Successful,
		"errors", result.Errors)
	return result, nil
}

// ingestRecord applies one parsed record: the QA pair node with its framework
// edges, then the embedded chunks. Chunks whose embedding fails are skipped
// individually.
func (c *Client) ingestRecord(ctx context.Context, batchID string, rec types.AnalysisRecord) types.RecordStatus {
	status := types.RecordStatus{QAID: rec.QAID}

	if c.config.Ledger != nil {
		done, err := c.config.Ledger.Done(ctx, batchID, rec.QAID)
		if err != nil {
			c.logger.Warn("checkpoint lookup failed", "qa_id", rec.QAID, "error", err)
		} else if done {
			status.Skipped = true
			c.logger.Debug("skipping completed record", "qa_id", rec.QAID, "batch_id", batchID)
			return status
		}
	}

	if err := c.builder.ApplyRecord(ctx, c.config.SessionID, rec); err != nil {
		status.Error = err.Error()
		return status
	}

	chunks := chunker.Split(c.config.SessionID, rec.QAID, rec.Answer, chunker.ClinicalContext{
		Subjective: rec.Subjective,
		Objective:  rec.Objective,
		Assessment: rec.Assessment,
		Plan:       rec.Plan,
	})

	kept := make([]chunker.Chunk, 0, len(chunks))
	vectors := make(map[string][]float32, len(chunks))
	for _, ch := range chunks {
		vec, err := c.embedder.EmbedSingle(ctx, ch.Text)
		if err != nil {
			status.ChunksSkipped++
			c.logger.Warn("chunk embedding failed, skipping chunk",
				"chunk_id", ch.ID, "error", err)
			continue
		}
		kept = append(kept, ch)
		vectors[ch.ID] = vec
	}

	if err := c.builder.ApplyChunks(ctx, rec.QAID, kept); err != nil {
		status.Error = err.Error()
		return status
	}
	for _, ch := range kept {
		if err := c.store.UpsertChunkVector(ctx, ch.ID, vectors[ch.ID]); err != nil {
			status.Error = err.Error()
			return status
		}
	}
	status.ChunksCreated = len(kept)

	if c.config.Ledger != nil {
		err := c.config.Ledger.MarkDone(ctx, checkpoint.RecordState{
			BatchID:       batchID,
			QAID:          rec.QAID,
			ChunksCreated: status.ChunksCreated,
			ChunksSkipped: status.ChunksSkipped,
		})
		if err != nil {
			c.logger.Warn("checkpoint write failed", "qa_id", rec.QAID, "error", err)
		}
	}
	return status
}

// IngestFiles implements PersonaForge.
func (c *Client) IngestFiles(ctx context.Context, paths ...string) (*types.BatchResult, error) {
	if len(paths) == 0 {
		return nil, types.ErrEmptyInput
	}
	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read master file %q: %w", path, err)
		}
		parts = append(parts, string(data))
	}
	return c.Ingest(ctx, strings.Join(parts, "\n"))
}
