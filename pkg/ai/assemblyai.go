package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/talk-assistant/pkg/config"
)

// AssemblyAIClient transcribes chunks through the official AssemblyAI SDK
type AssemblyAIClient struct {
	sdk *aai.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, baseURL string
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}
	return &AssemblyAIClient{sdk: aai.NewClientWithOptions(opts...)}
}

// Transcribe uploads the chunk audio and waits for the transcript.
// AssemblyAI has no continuation prompt, so req.Prompt is ignored.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode("en_us"),
		Punctuate:    aai.Bool(true),
		FormatText:   aai.Bool(true),
	}

	transcript, err := c.sdk.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(req.Audio), params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, &StatusError{Service: "assemblyai", Body: msg}
	}
	if transcript.Text == nil {
		return nil, malformed("assemblyai transcript has no text")
	}
	return &TranscriptionResponse{Text: *transcript.Text}, nil
}
