// Package driver defines the GraphStore contract and its backends.
//
// MemoryStore is the embedded store: maps behind a RWMutex with a linear
// cosine scan for vector queries. Neo4jStore speaks bolt and uses the native
// vector index. ScriptWriter renders mutations as a declarative Cypher script
// for stores without a reachable transactional API.
//
// All backends share the contract's guarantees: node upserts merge by natural
// key, ReplaceEdges swaps a node's edge set atomically, and vector queries
// break score ties by chunk id ascending.
package driver
