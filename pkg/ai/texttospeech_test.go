package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/talk-assistant/pkg/config"
)

func TestSynthesize_AppliesDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "tts-key" {
			t.Errorf("key = %q", got)
		}
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Input.Text != "What is a river?" {
			t.Errorf("text = %q", req.Input.Text)
		}
		if req.Voice.LanguageCode != "en-US" || req.AudioConfig.SpeakingRate != 1.2 || req.AudioConfig.AudioEncoding != "MP3" {
			t.Errorf("defaults not applied: %+v", req)
		}
		json.NewEncoder(w).Encode(synthesizeResponse{AudioContent: base64.StdEncoding.EncodeToString([]byte("mp3"))})
	}))
	defer srv.Close()

	client, err := NewTextToSpeechClient(context.Background(), &config.SpeechConfig{
		APIKey:        "tts-key",
		BaseURL:       srv.URL,
		LanguageCode:  "en-US",
		AudioEncoding: "MP3",
		SpeakingRate:  1.2,
	})
	if err != nil {
		t.Fatalf("NewTextToSpeechClient() error = %v", err)
	}

	speech, err := client.Synthesize(context.Background(), SpeechRequest{Text: "What is a river?"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(speech.Audio) != "mp3" || speech.ContentType != "audio/mpeg" {
		t.Errorf("unexpected speech: %+v", speech)
	}
}

func TestSynthesize_EmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewTextToSpeechClient(context.Background(), &config.SpeechConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTextToSpeechClient() error = %v", err)
	}
	if _, err := client.Synthesize(context.Background(), SpeechRequest{Text: "x"}); err == nil {
		t.Fatal("expected error for empty audioContent")
	}
}
