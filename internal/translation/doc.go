// Package translation contains the core of the translation pipeline: the
// provider boundary to external language-model APIs, the chunked translator
// that fans requests out and stitches results back together, and the
// orchestrator that drives one task from queue message to terminal state.
package translation
