package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/johnquangdev/talk-assistant/pkg/config"
)

// ErrMalformedResponse marks a success response whose body could not be parsed
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned when a model API answers with a non-success status
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FunctionCallSelector forces the model to call the named function
type FunctionCallSelector struct {
	Name string `json:"name"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model        string                `json:"model"`
	Messages     []Message             `json:"messages"`
	Functions    []Function            `json:"functions,omitempty"`
	FunctionCall *FunctionCallSelector `json:"function_call,omitempty"`
}

// FunctionCall is the structured output returned by the model
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatMessage is the assistant message of a choice
type ChatMessage struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// ChatChoice is one completion choice
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage is the token accounting of a completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	ID      string       `json:"id"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// Content returns the text of the first choice
func (r *ChatResponse) Content() (string, error) {
	if len(r.Choices) == 0 {
		return "", malformed("no choices in chat response")
	}
	return r.Choices[0].Message.Content, nil
}

// FunctionArguments returns the raw JSON arguments of the first choice's function call
func (r *ChatResponse) FunctionArguments() (string, error) {
	if len(r.Choices) == 0 {
		return "", malformed("no choices in chat response")
	}
	call := r.Choices[0].Message.FunctionCall
	if call == nil {
		return "", malformed("no function_call in chat response")
	}
	return call.Arguments, nil
}

// ImageRequest is the payload for /v1/images/generations
type ImageRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// ImageData is one generated image, inline or by URL
type ImageData struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
}

// ImageResponse is the response of the image endpoint
type ImageResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

// Image is a decoded image payload
type Image struct {
	Data        []byte
	ContentType string
	URL         string
}

// TranscriptionRequest is the multipart payload for /v1/audio/transcriptions
type TranscriptionRequest struct {
	Audio    []byte
	FileName string
	Model    string
	Prompt   string
	Duration time.Duration
}

// TranscriptionResponse holds the transcript text
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// OpenAIClient is a minimal client for the OpenAI chat, image and audio endpoints
type OpenAIClient struct {
	apiKey             string
	baseURL            string
	chatModel          string
	imageModel         string
	imageSize          string
	transcriptionModel string
	client             *http.Client
}

// NewOpenAIClient creates an OpenAI client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	c := &OpenAIClient{
		baseURL:            "https://api.openai.com",
		chatModel:          "gpt-4-0613",
		imageSize:          "1024x1024",
		transcriptionModel: "whisper-1",
		client:             &http.Client{Timeout: 90 * time.Second},
	}
	if cfg != nil {
		c.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			c.baseURL = cfg.BaseURL
		}
		if cfg.ChatModel != "" {
			c.chatModel = cfg.ChatModel
		}
		if cfg.ImageSize != "" {
			c.imageSize = cfg.ImageSize
		}
		if cfg.TranscriptionModel != "" {
			c.transcriptionModel = cfg.TranscriptionModel
		}
		c.imageModel = cfg.ImageModel
		if cfg.Timeout > 0 {
			c.client.Timeout = cfg.Timeout
		}
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// CreateChatCompletion calls /v1/chat/completions
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.chatModel
	}
	var out ChatResponse
	if err := c.postJSON(ctx, "/v1/chat/completions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateImage calls /v1/images/generations and returns the first image.
// Inline payloads are base64 decoded; URL results are downloaded.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	if req.Model == "" {
		req.Model = c.imageModel
	}
	if req.Size == "" {
		req.Size = c.imageSize
	}
	if req.N == 0 {
		req.N = 1
	}
	var out ImageResponse
	if err := c.postJSON(ctx, "/v1/images/generations", req, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, malformed("no data in image response")
	}
	first := out.Data[0]
	switch {
	case first.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, malformed("decode b64_json: %v", err)
		}
		return &Image{Data: data, ContentType: http.DetectContentType(data)}, nil
	case first.URL != "":
		data, contentType, err := c.Download(ctx, first.URL)
		if err != nil {
			return nil, err
		}
		return &Image{Data: data, ContentType: contentType, URL: first.URL}, nil
	default:
		return nil, malformed("image response has neither url nor b64_json")
	}
}

// Download fetches a generated asset
func (c *OpenAIClient) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", statusError("image download", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Transcribe calls /v1/audio/transcriptions with a multipart body
func (c *OpenAIClient) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.Model == "" {
		req.Model = c.transcriptionModel
	}
	if req.FileName == "" {
		req.FileName = "audio.webm"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, err
	}
	if err := w.WriteField("model", req.Model); err != nil {
		return nil, err
	}
	if req.Prompt != "" {
		if err := w.WriteField("prompt", req.Prompt); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var out TranscriptionResponse
	if err := c.do(httpReq, "openai transcription", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *OpenAIClient) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "openai", out)
}

func (c *OpenAIClient) do(req *http.Request, service string, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(service, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return malformed("decode %s response: %v", service, err)
	}
	return nil
}

func statusError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
