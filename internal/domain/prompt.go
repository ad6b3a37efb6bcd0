package domain

// StylePrompt is a reusable system-prompt template for translation requests.
// The text contains {source_lang} and {target_lang} placeholders filled in
// by the translator before the prompt is sent to a provider.
type StylePrompt struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
