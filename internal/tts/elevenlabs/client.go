package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"scriptorium-backend/internal/tts"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModelID = "eleven_monolingual_v1"
)

// Client implements tts.Provider against the ElevenLabs HTTP API.
type Client struct {
	apiKey     string
	modelID    string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient constructs a new ElevenLabs client.
func NewClient(apiKey, modelID string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ELEVEN_API_KEY is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultModelID
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ELEVEN_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}

	c := &Client{
		apiKey:     apiKey,
		modelID:    modelID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "elevenlabs",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
	return c, nil
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

type apiError struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// CloneVoice sends all samples plus the label as one multipart request to
// /v1/voices/add. The call is atomic on the provider side: either one voice
// id comes back or nothing was created.
func (c *Client) CloneVoice(ctx context.Context, label string, samples []tts.Sample) (string, error) {
	if len(samples) == 0 {
		return "", errors.New("at least one sample is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("name", label); err != nil {
		return "", err
	}
	for i, sample := range samples {
		name := sample.FileName
		if name == "" {
			name = fmt.Sprintf("sample_%d", i)
		}
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			return "", err
		}
		if _, err := part.Write(sample.Data); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/voices/add", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var parsed addVoiceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("elevenlabs response parse: %w", err)
	}
	if parsed.VoiceID == "" {
		return "", &tts.ProviderError{Status: http.StatusOK, Message: "response missing voice_id"}
	}
	return parsed.VoiceID, nil
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize posts text to /v1/text-to-speech/{voice_id} and returns the
// raw audio bytes.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, settings tts.Settings) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is required")
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, errors.New("voice id is required")
	}

	stability, similarity, style, speakerBoost := settings.Resolve()
	payload, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       stability,
			SimilarityBoost: similarity,
			Style:           style,
			UseSpeakerBoost: speakerBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?optimize_streaming_latency=0", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do executes one request through the circuit breaker and maps non-2xx
// responses onto *tts.ProviderError. There are no retries here; retry
// policy belongs to the caller.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("elevenlabs request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		provErr := &tts.ProviderError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var parsed apiError
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail.Message != "" {
			provErr.Code = parsed.Detail.Status
			provErr.Message = parsed.Detail.Message
		}
		return nil, provErr
	}
	return body, nil
}

var _ tts.Provider = (*Client)(nil)
