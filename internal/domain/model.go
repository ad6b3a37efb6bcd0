package domain

// AIModel describes one external language model offered for translation.
// Provider selects which client implementation talks to it; Name is the
// provider-side model identifier sent on the wire.
type AIModel struct {
	ID       int    `json:"id"`
	ShowName string `json:"show_name"`
	Name     string `json:"name"`
	Provider string `json:"provider"`

	// TokenMultiplier scales raw token usage into billed tokens, so that
	// expensive models cost proportionally more from the user's balance.
	TokenMultiplier float64 `json:"token_multiplier"`
}

// BilledTokens converts raw provider token usage into the amount charged
// against a user's balance.
func (m AIModel) BilledTokens(rawTokens int) int {
	if m.TokenMultiplier <= 0 {
		return rawTokens
	}
	return int(float64(rawTokens) * m.TokenMultiplier)
}
