package personaforge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/soundprediction/personaforge/pkg/analysis"
	"github.com/soundprediction/personaforge/pkg/checkpoint"
	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/embedder"
	"github.com/soundprediction/personaforge/pkg/schema"
	"github.com/soundprediction/personaforge/pkg/search"
	"github.com/soundprediction/personaforge/pkg/stats"
	"github.com/soundprediction/personaforge/pkg/telemetry"
	"github.com/soundprediction/personaforge/pkg/types"
)

// PersonaForge is the main interface for building and querying psychological
// knowledge graphs from annotated therapy-session transcripts.
type PersonaForge interface {
	// Ingest parses a master analysis file and writes its records into the
	// graph: QA pairs, framework edges, and embedded text chunks.
	Ingest(ctx context.Context, content string) (*types.BatchResult, error)

	// IngestFiles concatenates the given master files and ingests them as
	// one batch.
	IngestFiles(ctx context.Context, paths ...string) (*types.BatchResult, error)

	// Search performs hybrid retrieval: vector similarity over chunks, then
	// graph traversal to recover each hit's psychological context.
	Search(ctx context.Context, query string, limit int) (*types.SearchResults, error)

	// SessionStatistics aggregates framework occurrences across a session.
	SessionStatistics(ctx context.Context, sessionID string) (*types.SessionStatistics, error)

	// SessionExtremes returns the QA pairs scoring highest on one numeric
	// edge property within a session.
	SessionExtremes(ctx context.Context, sessionID, property string, limit int) (*types.ExtremeValues, error)

	// PersonalitySummary reports the distinct framework values observed in a
	// session, narrowed to one focus area.
	PersonalitySummary(ctx context.Context, sessionID, focus string) (*types.PersonalitySummary, error)

	// SessionPlans collects the Plan section of every QA pair in a session.
	SessionPlans(ctx context.Context, sessionID string) (*types.SessionSections, error)

	// SessionSubjectives collects the Subjective section of every QA pair.
	SessionSubjectives(ctx context.Context, sessionID string) (*types.SessionSections, error)

	// QAPairDetails returns one QA pair's full context plus its chunk texts.
	QAPairDetails(ctx context.Context, qaID string) (*types.QAPairDetails, error)

	// SetClientHistory attaches a background-history node to the configured
	// client.
	SetClientHistory(ctx context.Context, history string) error

	// ClientHistory returns the background-history entries attached to a
	// client. An empty clientID reads the configured client.
	ClientHistory(ctx context.Context, clientID string) (*types.ClientHistory, error)

	// CreateIndices creates store constraints and the chunk vector index.
	CreateIndices(ctx context.Context) error

	// Close releases the store, embedder, and any checkpoint or telemetry
	// resources.
	Close(ctx context.Context) error
}

// Config holds configuration for the PersonaForge client.
type Config struct {
	// ClientID and SessionID scope ingested records when the master file
	// does not carry its own identifiers.
	ClientID  string
	SessionID string

	// SearchLimit is the default result count for Search when the caller
	// passes limit <= 0.
	SearchLimit int

	// Ledger, when set, lets a re-run of the same batch skip records that
	// already completed.
	Ledger *checkpoint.Ledger

	// Telemetry, when set, records operation events as Parquet rows.
	Telemetry *telemetry.Recorder
}

// Client is the main implementation of the PersonaForge interface.
type Client struct {
	store    driver.GraphStore
	embedder embedder.Client
	ingestor *analysis.Ingestor
	builder  *schema.Builder
	searcher *search.Engine
	stats    *stats.Engine
	config   *Config
	logger   *slog.Logger
}

var _ PersonaForge = (*Client)(nil)

// NewClient creates a new PersonaForge client over the given store and
// embedder.
func NewClient(store driver.GraphStore, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("graph store is required")
	}
	if embedderClient == nil {
		return nil, errors.New("embedder client is required")
	}
	if config == nil {
		config = &Config{}
	}
	if config.ClientID == "" {
		config.ClientID = "client_001"
	}
	if config.SessionID == "" {
		config.SessionID = "session_001"
	}
	if config.SearchLimit <= 0 {
		config.SearchLimit = search.DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		store:    store,
		embedder: embedderClient,
		ingestor: analysis.NewIngestor(logger),
		builder:  schema.NewBuilder(store, logger),
		searcher: search.NewEngine(store, embedderClient, logger),
		stats:    stats.NewEngine(store, logger),
		config:   config,
		logger:   logger,
	}, nil
}

// GetStore returns the underlying graph store.
func (c *Client) GetStore() driver.GraphStore {
	return c.store
}

// GetEmbedder returns the embedder client.
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// Search implements PersonaForge.
func (c *Client) Search(ctx context.Context, query string, limit int) (*types.SearchResults, error) {
	if limit <= 0 {
		limit = c.config.SearchLimit
	}
	var results *types.SearchResults
	err := c.config.Telemetry.Operation("search", c.config.SessionID, func() (int, int, int, error) {
		var err error
		results, err = c.searcher.Search(ctx, query, limit)
		if err != nil {
			return 0, 0, 1, err
		}
		return len(results.Results), 0, 0, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SessionStatistics implements PersonaForge.
func (c *Client) SessionStatistics(ctx context.Context, sessionID string) (*types.SessionStatistics, error) {
	return c.stats.SessionStatistics(ctx, sessionID)
}

// SessionExtremes implements PersonaForge.
func (c *Client) SessionExtremes(ctx context.Context, sessionID, property string, limit int) (*types.ExtremeValues, error) {
	return c.stats.Extremes(ctx, sessionID, stats.ExtremeProperty(property), limit)
}

// PersonalitySummary implements PersonaForge.
func (c *Client) PersonalitySummary(ctx context.Context, sessionID, focus string) (*types.PersonalitySummary, error) {
	return c.stats.PersonalitySummary(ctx, sessionID, focus)
}

// SessionPlans implements PersonaForge.
func (c *Client) SessionPlans(ctx context.Context, sessionID string) (*types.SessionSections, error) {
	return c.stats.SessionPlans(ctx, sessionID)
}

// SessionSubjectives implements PersonaForge.
func (c *Client) SessionSubjectives(ctx context.Context, sessionID string) (*types.SessionSections, error) {
	return c.stats.SessionSubjectives(ctx, sessionID)
}

// QAPairDetails implements PersonaForge. An unknown QA id is not an error;
// the response reports Found=false.
func (c *Client) QAPairDetails(ctx context.Context, qaID string) (*types.QAPairDetails, error) {
	qaCtx, _, err := search.LoadQAPairContext(ctx, c.store, qaID)
	if errors.Is(err, types.ErrNotFound) {
		return &types.QAPairDetails{}, nil
	}
	if err != nil {
		return nil, err
	}

	qa := types.NodeRef{Label: types.LabelQAPair, Key: qaID}
	edges, err := c.store.EdgesFrom(ctx, qa, types.EdgeHasChunk)
	if err != nil {
		return nil, fmt.Errorf("load chunk edges: %w", err)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].To.Key < edges[j].To.Key })

	chunks := make([]string, 0, len(edges))
	for _, edge := range edges {
		node, err := c.store.GetNode(ctx, types.LabelTextChunk, edge.To.Key)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load chunk %q: %w", edge.To.Key, err)
		}
		chunks = append(chunks, types.PropString(node.Props, "text"))
	}

	return &types.QAPairDetails{Found: true, QAPair: *qaCtx, Chunks: chunks}, nil
}

// SetClientHistory implements PersonaForge.
func (c *Client) SetClientHistory(ctx context.Context, history string) error {
	return c.builder.EnsureClientHistory(ctx, c.config.ClientID, history)
}

// ClientHistory implements PersonaForge. A client with no history on record
// is not an error; the response reports Found=false.
func (c *Client) ClientHistory(ctx context.Context, clientID string) (*types.ClientHistory, error) {
	if clientID == "" {
		clientID = c.config.ClientID
	}

	refs, err := c.store.Traverse(ctx,
		types.NodeRef{Label: types.LabelClient, Key: clientID},
		types.EdgeHasHistory, types.DirectionOut)
	if err != nil {
		return nil, fmt.Errorf("load history for client %q: %w", clientID, err)
	}

	out := &types.ClientHistory{ClientID: clientID}
	for _, ref := range refs {
		if ref.Key == "" {
			continue
		}
		out.History = append(out.History, ref.Key)
	}
	sort.Strings(out.History)
	out.Found = len(out.History) > 0
	return out, nil
}

// CreateIndices implements PersonaForge.
func (c *Client) CreateIndices(ctx context.Context) error {
	return c.store.CreateIndices(ctx)
}

// Close implements PersonaForge.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.config.Ledger != nil {
		if err := c.config.Ledger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.config.Telemetry.Close()
	if err := c.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
