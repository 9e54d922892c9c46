package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultTTSModel      = "tts-1"
	defaultTTSVoice      = "alloy"
	defaultSTTModel      = "whisper-1"
)

// SpeechSynthesizer turns question text into a playable audio resource and
// returns its URL path. Failures are per-question and non-fatal.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Transcriber converts recorded answer audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// SpeechService talks to the OpenAI speech endpoints. Synthesized audio is
// written under audioDir and served statically at /audio/.
type SpeechService struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	ttsModel string
	voice    string
	sttModel string
	audioDir string
	logger   *zap.Logger
}

func NewSpeechService(apiKey, audioDir string, logger *zap.Logger) *SpeechService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpeechService{
		apiKey:   apiKey,
		baseURL:  defaultOpenAIBaseURL,
		client:   &http.Client{},
		ttsModel: defaultTTSModel,
		voice:    defaultTTSVoice,
		sttModel: defaultSTTModel,
		audioDir: audioDir,
		logger:   logger,
	}
}

// WithBaseURL points the service at a different API endpoint. Used by tests.
func (s *SpeechService) WithBaseURL(baseURL string) *SpeechService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Synthesize requests TTS audio for the text, stores it as an mp3 file and
// returns the /audio/... path it is served from.
func (s *SpeechService) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrSynthesis)
	}

	payload, err := json.Marshal(map[string]string{
		"model": s.ttsModel,
		"voice": s.voice,
		"input": text,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrSynthesis, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrSynthesis, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error: %s", ErrSynthesis, string(body))
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	fileName := fmt.Sprintf("speech_%s.mp3", uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.audioDir, fileName), body, 0o644); err != nil {
		return "", fmt.Errorf("%w: write audio file: %v", ErrSynthesis, err)
	}

	s.logger.Debug("synthesized speech", zap.String("file", fileName), zap.Int("bytes", len(body)))
	return "/audio/" + fileName, nil
}

// Transcribe sends recorded audio to the transcription endpoint and returns
// the recognized text.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", ErrTranscription)
	}
	if filename == "" {
		filename = "answer.webm"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if err := writer.WriteField("model", s.sttModel); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if err := writer.WriteField("language", "en"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTranscription, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error: %s", ErrTranscription, string(body))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrTranscription, err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("%w: no text recognized", ErrTranscription)
	}
	return result.Text, nil
}
