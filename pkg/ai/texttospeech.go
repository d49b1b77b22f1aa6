package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/johnquangdev/talk-assistant/pkg/config"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// SpeechRequest describes one text-to-speech synthesis
type SpeechRequest struct {
	Text          string
	VoiceName     string
	LanguageCode  string
	AudioEncoding string
	Pitch         float64
	SpeakingRate  float64
}

// Speech is decoded synthesized audio
type Speech struct {
	Audio       []byte
	ContentType string
}

type synthesizeInput struct {
	Text string `json:"text"`
}

type synthesizeVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
}

type synthesizeAudioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	Pitch         float64 `json:"pitch"`
	SpeakingRate  float64 `json:"speakingRate"`
}

type synthesizeRequest struct {
	Input       synthesizeInput       `json:"input"`
	Voice       synthesizeVoice       `json:"voice"`
	AudioConfig synthesizeAudioConfig `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// TextToSpeechClient calls the Google Cloud text:synthesize endpoint
type TextToSpeechClient struct {
	apiKey   string
	baseURL  string
	defaults SpeechRequest
	client   *http.Client
}

// NewTextToSpeechClient creates a client authenticated by API key, or by
// application default credentials when no key is configured.
func NewTextToSpeechClient(ctx context.Context, cfg *config.SpeechConfig) (*TextToSpeechClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &TextToSpeechClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		defaults: SpeechRequest{
			LanguageCode:  cfg.LanguageCode,
			AudioEncoding: cfg.AudioEncoding,
			Pitch:         cfg.Pitch,
			SpeakingRate:  cfg.SpeakingRate,
		},
		client: &http.Client{Timeout: timeout},
	}
	if c.apiKey == "" {
		httpClient, err := google.DefaultClient(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to load google credentials: %w", err)
		}
		httpClient.Timeout = timeout
		c.client = httpClient
	}
	return c, nil
}

// Synthesize converts text to audio. Unset request fields take the configured defaults.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, req SpeechRequest) (*Speech, error) {
	if req.LanguageCode == "" {
		req.LanguageCode = c.defaults.LanguageCode
	}
	if req.AudioEncoding == "" {
		req.AudioEncoding = c.defaults.AudioEncoding
	}
	if req.SpeakingRate == 0 {
		req.SpeakingRate = c.defaults.SpeakingRate
	}
	if req.Pitch == 0 {
		req.Pitch = c.defaults.Pitch
	}

	payload := synthesizeRequest{
		Input: synthesizeInput{Text: req.Text},
		Voice: synthesizeVoice{LanguageCode: req.LanguageCode, Name: req.VoiceName},
		AudioConfig: synthesizeAudioConfig{
			AudioEncoding: req.AudioEncoding,
			Pitch:         req.Pitch,
			SpeakingRate:  req.SpeakingRate,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/v1beta1/text:synthesize?alt=json"
	if c.apiKey != "" {
		url += "&key=" + c.apiKey
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("texttospeech", resp)
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, malformed("decode texttospeech response: %v", err)
	}
	if out.AudioContent == "" {
		return nil, malformed("texttospeech response has no audioContent")
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, malformed("decode audioContent: %v", err)
	}
	return &Speech{Audio: audio, ContentType: audioContentType(req.AudioEncoding)}, nil
}

func audioContentType(encoding string) string {
	switch strings.ToUpper(encoding) {
	case "MP3":
		return "audio/mpeg"
	case "OGG_OPUS":
		return "audio/ogg"
	case "LINEAR16":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
