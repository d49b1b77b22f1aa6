package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

// DefaultAttempts is the number of tries per model call
const DefaultAttempts = 3

// ChatCompleter performs chat completions
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)
}

// ImageGenerator synthesizes images
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ai.ImageRequest) (*ai.Image, error)
}

// SpeechSynthesizer converts text to audio
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req ai.SpeechRequest) (*ai.Speech, error)
}

// Transcriber converts audio to text
type Transcriber interface {
	Transcribe(ctx context.Context, req ai.TranscriptionRequest) (*ai.TranscriptionResponse, error)
}

// CostRecorder receives the cost of successful calls
type CostRecorder interface {
	Add(delta float64)
}

// Clients groups the external model APIs. Unused clients may be nil.
type Clients struct {
	Chat        ChatCompleter
	Images      ImageGenerator
	Speech      SpeechSynthesizer
	Transcriber Transcriber
}

// Options tunes the gateway
type Options struct {
	Attempts      int
	CallTimeout   time.Duration
	Rates         ai.Rates
	ChatModel     string
	QuestionModel string
	Logger        *zap.Logger
}

// Gateway wraps every external model call in a bounded retry loop.
// Attempts are retried immediately: there is no backoff and no jitter.
type Gateway struct {
	clients       Clients
	attempts      int
	callTimeout   time.Duration
	rates         ai.Rates
	chatModel     string
	questionModel string
	validate      *validator.Validate
	logger        *zap.Logger
}

// New creates a gateway
func New(clients Clients, opts Options) *Gateway {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rates == (ai.Rates{}) {
		opts.Rates = ai.DefaultRates()
	}
	return &Gateway{
		clients:       clients,
		attempts:      opts.Attempts,
		callTimeout:   opts.CallTimeout,
		rates:         opts.Rates,
		chatModel:     opts.ChatModel,
		questionModel: opts.QuestionModel,
		validate:      validator.New(),
		logger:        opts.Logger,
	}
}

// Attempts returns the retry budget per call
func (g *Gateway) Attempts() int {
	return g.attempts
}

// invoke runs fn until it succeeds or the attempt budget is spent.
// Each attempt gets its own deadline; an expired deadline consumes the attempt.
func (g *Gateway) invoke(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var (
		attempts int
		last     error
	)

	operation := func() error {
		attempts++
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if g.callTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, g.callTimeout)
		}
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		last = err
		g.logger.Debug("model call attempt failed",
			zap.String("op", op),
			zap.Int("attempt", attempts),
			zap.String("kind", classify(err).String()),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(g.attempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		if last == nil {
			last = err
		}
		callErr := &CallError{Op: op, Kind: classify(last), Attempts: attempts, Err: last}
		g.logger.Warn("model call exhausted",
			zap.String("op", op),
			zap.Int("attempts", attempts),
			zap.String("kind", callErr.Kind.String()),
			zap.Error(last),
		)
		return callErr
	}
	return nil
}

// Text requests a plain chat completion and returns its content
func (g *Gateway) Text(ctx context.Context, op string, messages []ai.Message, cost CostRecorder) (string, error) {
	var content string
	err := g.invoke(ctx, op, func(ctx context.Context) error {
		if g.clients.Chat == nil {
			return notConfigured("chat")
		}
		resp, err := g.clients.Chat.CreateChatCompletion(ctx, ai.ChatRequest{
			Model:    g.questionModel,
			Messages: messages,
		})
		if err != nil {
			return err
		}
		record(cost, g.rates.ChatCost(resp.Usage))
		text, err := resp.Content()
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return ParseFailure(fmt.Errorf("%s: empty content", op))
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// Structured forces the model to call fn and decodes its arguments into T.
// Decoding errors are parse failures; `validate` tag violations on T are
// validation failures. Both consume an attempt. Every decoded response is
// billed, including ones whose arguments are later rejected.
func Structured[T any](ctx context.Context, g *Gateway, op string, messages []ai.Message, fn ai.Function, cost CostRecorder) (*T, error) {
	var result *T
	err := g.invoke(ctx, op, func(ctx context.Context) error {
		if g.clients.Chat == nil {
			return notConfigured("chat")
		}
		resp, err := g.clients.Chat.CreateChatCompletion(ctx, ai.ChatRequest{
			Model:        g.chatModel,
			Messages:     messages,
			Functions:    []ai.Function{fn},
			FunctionCall: &ai.FunctionCallSelector{Name: fn.Name},
		})
		if err != nil {
			return err
		}
		record(cost, g.rates.ChatCost(resp.Usage))
		args, err := resp.FunctionArguments()
		if err != nil {
			return err
		}
		var out T
		if err := json.Unmarshal([]byte(args), &out); err != nil {
			return ParseFailure(fmt.Errorf("decode %s arguments: %w", fn.Name, err))
		}
		if err := g.validate.Struct(&out); err != nil {
			return ValidationFailure(fmt.Errorf("validate %s arguments: %w", fn.Name, err))
		}
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Image synthesizes an image for prompt at a flat per-call cost
func (g *Gateway) Image(ctx context.Context, op, prompt string, cost CostRecorder) (*ai.Image, error) {
	var img *ai.Image
	err := g.invoke(ctx, op, func(ctx context.Context) error {
		if g.clients.Images == nil {
			return notConfigured("images")
		}
		out, err := g.clients.Images.GenerateImage(ctx, ai.ImageRequest{
			Prompt:         prompt,
			ResponseFormat: "b64_json",
		})
		if err != nil {
			return err
		}
		if len(out.Data) == 0 {
			return ParseFailure(fmt.Errorf("%s: empty image payload", op))
		}
		img = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	record(cost, g.rates.ImageCall)
	return img, nil
}

// Speech synthesizes audio for req at a flat per-call cost
func (g *Gateway) Speech(ctx context.Context, op string, req ai.SpeechRequest, cost CostRecorder) (*ai.Speech, error) {
	var speech *ai.Speech
	err := g.invoke(ctx, op, func(ctx context.Context) error {
		if g.clients.Speech == nil {
			return notConfigured("speech")
		}
		out, err := g.clients.Speech.Synthesize(ctx, req)
		if err != nil {
			return err
		}
		speech = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	record(cost, g.rates.SpeechCall)
	return speech, nil
}

// Transcribe converts audio to text, priced by audio duration
func (g *Gateway) Transcribe(ctx context.Context, op string, req ai.TranscriptionRequest, cost CostRecorder) (string, error) {
	return g.TranscribeFunc(ctx, op, func() ai.TranscriptionRequest { return req }, cost)
}

// TranscribeFunc is Transcribe with the request rebuilt on every attempt
func (g *Gateway) TranscribeFunc(ctx context.Context, op string, build func() ai.TranscriptionRequest, cost CostRecorder) (string, error) {
	var (
		text     string
		duration time.Duration
	)
	err := g.invoke(ctx, op, func(ctx context.Context) error {
		if g.clients.Transcriber == nil {
			return notConfigured("transcriber")
		}
		req := build()
		out, err := g.clients.Transcriber.Transcribe(ctx, req)
		if err != nil {
			return err
		}
		text, duration = out.Text, req.Duration
		return nil
	})
	if err != nil {
		return "", err
	}
	record(cost, g.rates.TranscriptionCost(duration))
	return text, nil
}

func record(cost CostRecorder, delta float64) {
	if cost != nil {
		cost.Add(delta)
	}
}
