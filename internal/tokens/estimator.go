// Package tokens estimates the token cost of translation requests before
// they are submitted. Estimates feed the pre-flight balance check and the
// advisory estimation surface; the authoritative number is always the usage
// reported by the provider after the fact.
package tokens

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/avetrov/babel-api/internal/domain"
)

// fallbackEncoding is used when a model name is not recognized by the
// tokenizer. cl100k_base is a reasonable default for current chat models;
// the estimate degrades in precision but estimation itself never fails.
const fallbackEncoding = "cl100k_base"

// outputMarginPercent is the safety margin added on top of the assumed
// output length. Translated text is assumed comparable in length to the
// input plus this margin, which intentionally overestimates.
const outputMarginPercent = 50

// useOfflineLoader switches tiktoken to its embedded BPE dictionaries so
// first use never reaches for the network.
var useOfflineLoader sync.Once

// Estimator predicts token usage for translation requests. It caches one
// tokenizer per model name and is safe for concurrent use.
type Estimator struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
	logger    *slog.Logger
}

// NewEstimator creates an Estimator. If logger is nil, the default logger
// is used.
func NewEstimator(logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}

	useOfflineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	})

	return &Estimator{
		encodings: make(map[string]*tiktoken.Tiktoken),
		logger:    logger.With(slog.String("component", "token_estimator")),
	}
}

// EstimateTranslation predicts the total token cost of translating text with
// the given system prompt on the given model.
//
// The estimate covers the input side (text plus prompt) and the output side,
// where the translated text is assumed to be roughly as long as the input
// plus a 50% safety margin. Deterministic for a given tokenizer version.
func (e *Estimator) EstimateTranslation(text, prompt string, model domain.AIModel) int {
	encoding := e.encodingFor(model.Name)

	inputTokens := countTokens(encoding, text)
	promptTokens := countTokens(encoding, prompt)

	outputTokens := inputTokens + inputTokens*outputMarginPercent/100

	return inputTokens + promptTokens + outputTokens
}

// EstimateTaskCost predicts the billed cost of translating text into
// languageCount target languages, applying the model's cost multiplier.
// This is what gets compared against the user's balance before tasks are
// enqueued.
func (e *Estimator) EstimateTaskCost(text, prompt string, model domain.AIModel, languageCount int) int {
	if languageCount < 1 {
		languageCount = 1
	}

	perLanguage := model.BilledTokens(e.EstimateTranslation(text, prompt, model))
	return perLanguage * languageCount
}

// encodingFor returns the tokenizer for the given model name, falling back
// to a generic encoding when the model is unrecognized. Returns nil when no
// tokenizer could be loaded at all; estimation then degrades to a character
// heuristic instead of failing.
func (e *Estimator) encodingFor(modelName string) *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encodings[modelName]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		e.logger.Warn("model not recognized by tokenizer, using fallback encoding",
			"model", modelName,
			"fallback", fallbackEncoding)

		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			e.logger.Error("fallback encoding unavailable, estimating by character count",
				"model", modelName,
				"error", err.Error())
			enc = nil
		}
	}

	e.encodings[modelName] = enc
	return enc
}

// countTokens counts with the tokenizer when one is available and otherwise
// approximates at roughly four bytes per token, a reasonable rate for
// GPT-family tokenizers on English text.
func countTokens(enc *tiktoken.Tiktoken, s string) int {
	if enc != nil {
		return len(enc.Encode(s, nil, nil))
	}
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}
