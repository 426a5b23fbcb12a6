// Package personaforge builds psychological knowledge graphs from annotated
// therapy-session transcripts and answers hybrid retrieval queries over them.
//
// Master analysis files pair each therapist question and client answer with a
// SOAP-style clinical analysis. Ingestion parses these entries, extracts
// closed-vocabulary framework annotations (emotions, cognitive distortions,
// attachment styles, maladaptive schemas, defense mechanisms, Erikson stages,
// and Big Five scores), and writes them into a property graph where the
// framework values are shared taxonomy nodes and the per-answer evidence
// lives on typed edges. Answers are split into embedded text chunks so
// retrieval can combine vector similarity with graph traversal.
//
// # Basic Usage
//
// Create a client over a graph store and an embedder:
//
//	store, err := driver.NewNeo4jStore("bolt://localhost:7687", "neo4j", "password", "neo4j", 1536)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close(ctx)
//
//	embConfig := embedder.Config{Model: "text-embedding-3-small", APIKey: "your-api-key"}
//	embedderClient := embedder.NewOpenAIClient(embConfig)
//
//	config := &personaforge.Config{ClientID: "client_001", SessionID: "session_001"}
//	client, err := personaforge.NewClient(store, embedderClient, config, nil)
//
// # Ingesting and Querying
//
// Feed it a master analysis file, then query:
//
//	result, err := client.IngestFiles(ctx, "master_analysis.txt")
//	hits, err := client.Search(ctx, "conflict with mother", 5)
//	stat, err := client.SessionStatistics(ctx, "session_001")
//
// The memory store in pkg/driver backs tests and small corpora; the Neo4j
// store is the production path and the script writer emits a standalone
// Cypher build script instead of touching a database.
package personaforge
