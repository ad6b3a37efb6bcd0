package translation

import (
	"context"
	"fmt"

	"github.com/avetrov/babel-api/internal/domain"
)

// ChunkResult is the outcome of translating one chunk.
type ChunkResult struct {
	// Text is the translated chunk.
	Text string

	// TokensUsed is the total token usage the provider reported for the
	// request, input and output combined.
	TokensUsed int
}

// Provider issues one chunk-translation request to an external
// language-model API. Implementations own their retry and timeout policy;
// callers treat one TranslateChunk call as one logical attempt.
//
// Implementations must keep no state between calls and be safe for
// concurrent use, since the translator fans out many chunks at once.
type Provider interface {
	// TranslateChunk sends the chunk with the given system prompt to the
	// model and returns the translated text and the reported token usage.
	//
	// Returns ErrProviderTimeout when retries are exhausted on transient
	// failures, and ErrProvider for non-retryable ones.
	TranslateChunk(ctx context.Context, model domain.AIModel, systemPrompt, chunk string) (ChunkResult, error)
}

// Registry maps provider names (domain.AIModel.Provider) to clients.
// Only one or two variants exist today, but the boundary stays open: adding
// a provider is registering a client, nothing else changes.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a client under the given provider name, replacing any
// previous registration. Registration happens during process wiring, before
// any lookups; the registry is read-only afterwards.
func (r *Registry) Register(name string, provider Provider) {
	r.providers[name] = provider
}

// For returns the client registered for the model's provider.
// Returns ErrUnknownProvider if none is registered.
func (r *Registry) For(model domain.AIModel) (Provider, error) {
	provider, ok := r.providers[model.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, model.Provider)
	}
	return provider, nil
}
