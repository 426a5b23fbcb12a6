// Package embedder provides text embedding clients for chunk and query
// vectors.
//
// The Client interface is provider-independent. OpenAIClient talks to the
// OpenAI embeddings API (or any compatible endpoint via BaseURL); LocalClient
// runs an EmbedEverything model in process for deployments that keep session
// text off external APIs. CircuitBreakerClient wraps either so a failing
// provider sheds load quickly. FakeClient is the deterministic test double.
package embedder
