package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// store uploads generated media when a media store is configured. Upload
// failures keep the in-memory payload and return an empty URL.
func (o *Orchestrator) store(ctx context.Context, key string, data []byte, contentType string) string {
	if o.media == nil || len(data) == 0 {
		return ""
	}
	url, err := o.media.Put(ctx, key, data, contentType)
	if err != nil {
		o.logger.Warn("failed to upload media", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func extensionFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/ogg":
		return "ogg"
	case "audio/wav", "audio/x-wav":
		return "wav"
	default:
		return "bin"
	}
}
