// Package types defines the shared data model for the PersonaForge knowledge
// graph: node labels and edge kinds, the closed framework vocabularies,
// per-kind edge attribute structs, parsed analysis records, and the
// structured results returned by retrieval and statistics queries.
package types
