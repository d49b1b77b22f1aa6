package ai

import "time"

// Rates converts model usage into a currency-equivalent cost
type Rates struct {
	PromptPer1K            float64
	CompletionPer1K        float64
	ImageCall              float64
	SpeechCall             float64
	TranscriptionPerSecond float64
	TranscriptionCall      float64
}

// DefaultRates returns the list prices used for cost accounting
func DefaultRates() Rates {
	return Rates{
		PromptPer1K:            0.03,
		CompletionPer1K:        0.06,
		ImageCall:              0.02,
		SpeechCall:             0,
		TranscriptionPerSecond: 0.006 / 60,
		TranscriptionCall:      0,
	}
}

// ChatCost prices a completion. Responses missing either token count cost nothing.
func (r Rates) ChatCost(u *Usage) float64 {
	if u == nil || u.PromptTokens == 0 || u.CompletionTokens == 0 {
		return 0
	}
	return float64(u.PromptTokens)*r.PromptPer1K/1000 + float64(u.CompletionTokens)*r.CompletionPer1K/1000
}

// TranscriptionCost prices a transcription by audio length, or by call when unknown
func (r Rates) TranscriptionCost(d time.Duration) float64 {
	if d <= 0 {
		return r.TranscriptionCall
	}
	return d.Seconds() * r.TranscriptionPerSecond
}
