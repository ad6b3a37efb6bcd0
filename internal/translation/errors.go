package translation

import (
	"errors"

	"github.com/avetrov/babel-api/internal/domain"
)

// Common errors returned by the translation package. The orchestrator and
// the queue consumer inspect these with errors.Is to decide how a failure is
// recorded and worded, instead of carrying the distinction in control flow.
var (
	// ErrIntegrity is returned when an entity the task references (task,
	// article, target language, model, prompt) is missing. Retrying cannot
	// help: the referenced data itself is absent.
	ErrIntegrity = errors.New("referenced entity is missing")

	// ErrProviderTimeout is returned when the external provider exhausted
	// its retries or timed out. Distinct from ErrProvider so the user can
	// be told the service is unavailable rather than shown a generic error.
	ErrProviderTimeout = errors.New("translation provider is unavailable")

	// ErrProvider is returned for non-retryable provider failures: rejected
	// requests, malformed responses.
	ErrProvider = errors.New("translation provider request failed")

	// ErrTextTooLong is returned when the text exceeds the configured
	// maximum word count before any provider call is made.
	ErrTextTooLong = errors.New("text exceeds the maximum translatable length")

	// ErrUnknownProvider is returned when a model names a provider no
	// client is registered for.
	ErrUnknownProvider = errors.New("no client registered for provider")
)

// FailureKind maps an error from the translation pipeline to the structured
// failure kind persisted on the task.
func FailureKind(err error) domain.FailureKind {
	switch {
	case errors.Is(err, ErrIntegrity), errors.Is(err, ErrTextTooLong), errors.Is(err, ErrUnknownProvider):
		return domain.FailureKindIntegrity
	case errors.Is(err, ErrProviderTimeout):
		return domain.FailureKindProviderTimeout
	default:
		return domain.FailureKindUnexpected
	}
}
