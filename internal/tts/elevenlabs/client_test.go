package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scriptorium-backend/internal/tts"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client.WithBaseURL(srv.URL)
}

func TestCloneVoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices/add" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("name"); got != "My Voice" {
			t.Errorf("name = %q", got)
		}
		if files := r.MultipartForm.File["files"]; len(files) != 2 {
			t.Errorf("files = %d, want 2", len(files))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"voice_id": "v-42"})
	})

	voiceID, err := client.CloneVoice(context.Background(), "My Voice", []tts.Sample{
		{FileName: "a.mp3", MimeType: "audio/mpeg", Data: []byte("aaa")},
		{FileName: "b.mp3", MimeType: "audio/mpeg", Data: []byte("bbb")},
	})
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if voiceID != "v-42" {
		t.Fatalf("voiceID = %q, want v-42", voiceID)
	}
}

func TestCloneVoiceRejectedByProvider(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_samples","message":"samples too short"}}`))
	})

	_, err := client.CloneVoice(context.Background(), "My Voice", []tts.Sample{
		{FileName: "a.mp3", Data: []byte("x")},
	})

	var provErr *tts.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *tts.ProviderError, got %v", err)
	}
	if provErr.Status != http.StatusBadRequest {
		t.Fatalf("status = %d", provErr.Status)
	}
	if provErr.Code != "invalid_samples" || provErr.Message != "samples too short" {
		t.Fatalf("unexpected detail: %+v", provErr)
	}
}

func TestSynthesize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/v-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload struct {
			Text          string `json:"text"`
			ModelID       string `json:"model_id"`
			VoiceSettings struct {
				Stability       float64 `json:"stability"`
				SimilarityBoost float64 `json:"similarity_boost"`
				Style           float64 `json:"style"`
				UseSpeakerBoost bool    `json:"use_speaker_boost"`
			} `json:"voice_settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Text != "hello" {
			t.Errorf("text = %q", payload.Text)
		}
		if payload.ModelID != "eleven_monolingual_v1" {
			t.Errorf("model = %q", payload.ModelID)
		}
		if payload.VoiceSettings.Style != 0.5 || !payload.VoiceSettings.UseSpeakerBoost {
			t.Errorf("default voice settings not applied: %+v", payload.VoiceSettings)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	audio, err := client.Synthesize(context.Background(), "hello", "v-42", tts.Settings{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio = %q", audio)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	client, err := NewClient("test-key", "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "  ", "v-42", tts.Settings{}); err == nil {
		t.Fatal("expected error for blank text")
	}
	if _, err := client.Synthesize(context.Background(), "hello", "", tts.Settings{}); err == nil {
		t.Fatal("expected error for missing voice id")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
