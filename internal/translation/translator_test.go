package translation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov/babel-api/internal/domain"
)

// fakeProvider echoes chunks back with a marker so tests can verify order
// and prompt propagation without a real API.
type fakeProvider struct {
	mu            sync.Mutex
	calls         []string
	prompts       []string
	tokensPerCall int
	failOn        string
	err           error
}

func (p *fakeProvider) TranslateChunk(_ context.Context, _ domain.AIModel, systemPrompt, chunk string) (ChunkResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, chunk)
	p.prompts = append(p.prompts, systemPrompt)
	p.mu.Unlock()

	if p.failOn != "" && strings.Contains(chunk, p.failOn) {
		return ChunkResult{}, p.err
	}
	return ChunkResult{Text: "[t]" + chunk, TokensUsed: p.tokensPerCall}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newTestTranslator(provider Provider, cfg TranslatorConfig) *Translator {
	registry := NewRegistry()
	registry.Register("openai", provider)
	return NewTranslator(registry, cfg)
}

func testModel() domain.AIModel {
	return domain.AIModel{ID: 1, Name: "gpt-4o", ShowName: "GPT-4o", Provider: "openai", TokenMultiplier: 1}
}

func testPrompt() domain.StylePrompt {
	return domain.StylePrompt{
		ID:    1,
		Title: "Default",
		Text:  "Translate from {{source_lang}} to {{target_lang}} keeping the style.",
	}
}

func TestRenderPrompt(t *testing.T) {
	t.Parallel()

	english := domain.Language{ID: 1, Name: "English", ISOCode: "EN"}
	german := domain.Language{ID: 2, Name: "German", ISOCode: "DE"}

	t.Run("both languages known", func(t *testing.T) {
		t.Parallel()
		rendered := RenderPrompt(testPrompt().Text, &english, german)
		assert.Equal(t, "Translate from language with ISO code EN to language with ISO code DE keeping the style.", rendered)
	})

	t.Run("nil source language falls back to detection", func(t *testing.T) {
		t.Parallel()
		rendered := RenderPrompt(testPrompt().Text, nil, german)
		assert.Equal(t, "Translate from given language to language with ISO code DE keeping the style.", rendered)
	})

	t.Run("template without placeholders is unchanged", func(t *testing.T) {
		t.Parallel()
		rendered := RenderPrompt("Translate this text.", &english, german)
		assert.Equal(t, "Translate this text.", rendered)
	})
}

func TestTranslatePreservesChunkOrder(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{tokensPerCall: 10}
	translator := newTestTranslator(provider, TranslatorConfig{MaxWordsInChunk: 3})

	text := "One two three. Four five six. Seven eight nine. Ten eleven twelve."
	result, err := translator.Translate(context.Background(), text, nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, testModel(), testPrompt())
	require.NoError(t, err)

	// Every sentence formed its own chunk; the merged text must keep the
	// original sentence order regardless of goroutine completion order.
	assert.Equal(t, "[t]One two three. [t]Four five six. [t]Seven eight nine. [t]Ten eleven twelve.", result.Text)
	assert.Equal(t, 40, result.TokensUsed)
	assert.Equal(t, 4, provider.callCount())
}

func TestTranslateSmallTextSingleChunk(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{tokensPerCall: 7}
	translator := newTestTranslator(provider, TranslatorConfig{MaxWordsInChunk: 400})

	result, err := translator.Translate(context.Background(), "Hello world.", nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, testModel(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, "[t]Hello world.", result.Text)
	assert.Equal(t, 7, result.TokensUsed)
	assert.Equal(t, 1, provider.callCount())
}

func TestTranslateRejectsOversizedText(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{tokensPerCall: 1}
	translator := newTestTranslator(provider, TranslatorConfig{
		MaxWordsInText:  5,
		MaxWordsInChunk: 3,
	})

	text := "one two three four five six seven"
	_, err := translator.Translate(context.Background(), text, nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, testModel(), testPrompt())
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTextTooLong)
	assert.Equal(t, 0, provider.callCount(), "no provider call may happen for oversized text")
}

func TestTranslateUnknownProvider(t *testing.T) {
	t.Parallel()

	translator := newTestTranslator(&fakeProvider{}, TranslatorConfig{MaxWordsInChunk: 400})

	model := testModel()
	model.Provider = "acme"
	_, err := translator.Translate(context.Background(), "Hello.", nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, model, testPrompt())

	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestTranslateChunkErrorFailsWholeCall(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		tokensPerCall: 1,
		failOn:        "six",
		err:           ErrProviderTimeout,
	}
	translator := newTestTranslator(provider, TranslatorConfig{MaxWordsInChunk: 3})

	text := "One two three. Four five six. Seven eight nine."
	_, err := translator.Translate(context.Background(), text, nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, testModel(), testPrompt())

	assert.ErrorIs(t, err, ErrProviderTimeout)
}

func TestTranslateEmptyText(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	translator := newTestTranslator(provider, TranslatorConfig{MaxWordsInChunk: 400})

	result, err := translator.Translate(context.Background(), "", nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, testModel(), testPrompt())
	require.NoError(t, err)

	assert.Empty(t, result.Text)
	assert.Zero(t, result.TokensUsed)
	assert.Equal(t, 0, provider.callCount())
}

func TestTranslateBoundedConcurrency(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{tokensPerCall: 2}
	translator := newTestTranslator(provider, TranslatorConfig{
		MaxWordsInChunk:     3,
		MaxConcurrentChunks: 1,
	})

	text := "One two three. Four five six. Seven eight nine."
	result, err := translator.Translate(context.Background(), text, nil,
		domain.Language{ID: 2, Name: "German", ISOCode: "DE"}, testModel(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, "[t]One two three. [t]Four five six. [t]Seven eight nine.", result.Text)
	assert.Equal(t, 6, result.TokensUsed)
}

func TestTranslatePassesRenderedPrompt(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{tokensPerCall: 1}
	translator := newTestTranslator(provider, TranslatorConfig{MaxWordsInChunk: 400})

	english := domain.Language{ID: 1, Name: "English", ISOCode: "EN"}
	german := domain.Language{ID: 2, Name: "German", ISOCode: "DE"}

	_, err := translator.Translate(context.Background(), "Hello.", &english, german, testModel(), testPrompt())
	require.NoError(t, err)

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "ISO code EN")
	assert.Contains(t, provider.prompts[0], "ISO code DE")
}

func TestFailureKindMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"missing entity", ErrIntegrity, domain.FailureKindIntegrity},
		{"oversized text", ErrTextTooLong, domain.FailureKindIntegrity},
		{"unknown provider", ErrUnknownProvider, domain.FailureKindIntegrity},
		{"provider timeout", ErrProviderTimeout, domain.FailureKindProviderTimeout},
		{"same text without wrapping", errors.New("x: " + ErrProviderTimeout.Error()), domain.FailureKindUnexpected},
		{"provider rejection", ErrProvider, domain.FailureKindUnexpected},
		{"arbitrary error", errors.New("boom"), domain.FailureKindUnexpected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FailureKind(tc.err))
		})
	}
}
