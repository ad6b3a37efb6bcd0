package translation

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/avetrov/babel-api/internal/chunker"
	"github.com/avetrov/babel-api/internal/domain"
)

// Template placeholders substituted into style prompts before each request.
const (
	sourceLangPlaceholder = "{{source_lang}}"
	targetLangPlaceholder = "{{target_lang}}"
)

// TranslatorConfig bounds how the translator splits and fans out work.
type TranslatorConfig struct {
	// MaxWordsInText rejects articles above this word count before any
	// provider call. Zero disables the guard.
	MaxWordsInText int

	// MaxWordsInChunk is the per-chunk word limit passed to the chunker.
	MaxWordsInChunk int

	// MaxConcurrentChunks caps in-flight provider requests per Translate
	// call. Zero means unbounded.
	MaxConcurrentChunks int
}

// Translator splits a text into chunks, translates them concurrently through
// a provider client, and reassembles the result in original order.
type Translator struct {
	registry *Registry
	cfg      TranslatorConfig
}

// NewTranslator creates a Translator backed by the given provider registry.
func NewTranslator(registry *Registry, cfg TranslatorConfig) *Translator {
	return &Translator{
		registry: registry,
		cfg:      cfg,
	}
}

// Result is the outcome of translating a full text.
type Result struct {
	// Text is the merged translation, chunks joined by single spaces.
	Text string

	// TokensUsed is the summed token usage across all chunk requests.
	TokensUsed int
}

// Translate renders the prompt for the language pair, splits text into
// chunks, translates every chunk concurrently, and merges the results in the
// original chunk order.
//
// sourceLang may be nil when the source article has no language on record;
// the prompt then asks the model to translate from "the given language".
// The first chunk error cancels the remaining requests and fails the call.
func (t *Translator) Translate(
	ctx context.Context,
	text string,
	sourceLang *domain.Language,
	targetLang domain.Language,
	model domain.AIModel,
	prompt domain.StylePrompt,
) (Result, error) {
	if t.cfg.MaxWordsInText > 0 {
		if words := chunker.CountWords(text); words > t.cfg.MaxWordsInText {
			return Result{}, fmt.Errorf("%w: text has %d words, limit is %d",
				ErrTextTooLong, words, t.cfg.MaxWordsInText)
		}
	}

	provider, err := t.registry.For(model)
	if err != nil {
		return Result{}, err
	}

	systemPrompt := RenderPrompt(prompt.Text, sourceLang, targetLang)

	chunks := chunker.Split(text, t.cfg.MaxWordsInChunk)
	if len(chunks) == 0 {
		return Result{}, nil
	}

	results := make([]ChunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	if t.cfg.MaxConcurrentChunks > 0 {
		g.SetLimit(t.cfg.MaxConcurrentChunks)
	}
	for i, chunk := range chunks {
		g.Go(func() error {
			res, err := provider.TranslateChunk(gctx, model, systemPrompt, chunk)
			if err != nil {
				return fmt.Errorf("translating chunk %d of %d: %w", i+1, len(chunks), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var (
		parts  = make([]string, len(results))
		tokens int
	)
	for i, res := range results {
		parts[i] = res.Text
		tokens += res.TokensUsed
	}

	return Result{
		Text:       strings.Join(parts, " "),
		TokensUsed: tokens,
	}, nil
}

// RenderPrompt substitutes the language placeholders in a style prompt
// template. A nil source language renders as "given language" so the model
// detects the source itself.
func RenderPrompt(template string, sourceLang *domain.Language, targetLang domain.Language) string {
	sourceDesc := "given language"
	if sourceLang != nil {
		sourceDesc = languageDescription(*sourceLang)
	}
	rendered := strings.ReplaceAll(template, sourceLangPlaceholder, sourceDesc)
	return strings.ReplaceAll(rendered, targetLangPlaceholder, languageDescription(targetLang))
}

func languageDescription(lang domain.Language) string {
	return fmt.Sprintf("language with ISO code %s", lang.ISOCode)
}
