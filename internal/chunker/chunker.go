// Package chunker splits text into word-bounded, sentence-aligned chunks
// suitable for sending to a translation provider one request at a time.
// Splitting is deterministic and keeps sentences whole: a chunk boundary
// never falls inside a sentence, so reassembling chunks in order with single
// spaces reproduces the original sentence sequence.
package chunker

import "regexp"

var (
	// wordRegex matches one word: a maximal run of letters, digits, or
	// underscores.
	wordRegex = regexp.MustCompile(`\w+`)

	// sentenceEndRegex matches a sentence boundary: sentence-ending
	// punctuation followed by one or more spaces. The punctuation stays with
	// the sentence; the spaces are consumed by the split.
	sentenceEndRegex = regexp.MustCompile(`[.!?] +`)
)

// CountWords returns the number of words in text.
func CountWords(text string) int {
	return len(wordRegex.FindAllStringIndex(text, -1))
}

// Split breaks text into ordered chunks of at most maxWords words each.
//
// If the whole text fits within maxWords it is returned unchanged as the
// single chunk. Otherwise the text is split into sentences and the sentences
// are packed greedily. A single sentence longer than maxWords is not split
// further; it becomes its own oversized chunk.
func Split(text string, maxWords int) []string {
	if text == "" {
		return nil
	}

	if CountWords(text) <= maxWords {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentWords := 0

	for _, sentence := range sentences {
		sentenceWords := CountWords(sentence)

		if currentWords+sentenceWords > maxWords && len(current) > 0 {
			chunks = append(chunks, join(current))
			current = nil
			currentWords = 0
		}

		current = append(current, sentence)
		currentWords += sentenceWords
	}

	if len(current) > 0 {
		chunks = append(chunks, join(current))
	}

	return chunks
}

// splitSentences cuts text at every sentence-ending punctuation mark that is
// followed by spaces. The trailing punctuation is kept, the spaces are not.
func splitSentences(text string) []string {
	boundaries := sentenceEndRegex.FindAllStringIndex(text, -1)
	if len(boundaries) == 0 {
		return []string{text}
	}

	var sentences []string
	start := 0
	for _, b := range boundaries {
		// b[0]+1 is right after the punctuation character
		sentences = append(sentences, text[start:b[0]+1])
		start = b[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

func join(sentences []string) string {
	out := sentences[0]
	for _, s := range sentences[1:] {
		out += " " + s
	}
	return out
}
