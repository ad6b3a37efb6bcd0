package domain

// Language is a translation source or target language. The ISO code is what
// gets substituted into prompt templates.
type Language struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	ISOCode string `json:"iso_code"`
}
