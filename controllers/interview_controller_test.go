package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alirezabazmara/InterviewApp/controllers"
	"github.com/alirezabazmara/InterviewApp/routes"
	"github.com/alirezabazmara/InterviewApp/services"
	"github.com/gin-gonic/gin"
)

type stubGenerator struct {
	responses []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	if len(s.responses) == 0 {
		return "", errors.New("no responses scripted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return "transcribed answer", nil
}

func newTestRouter(gen *stubGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := services.NewMemoryResponseLog()
	extractor := services.NewFeatureExtractor(gen, nil)
	questions := services.NewQuestionService(gen, nil, services.NewMemoryAskedStore(), nil).WithCounts(2, 1)
	analyzer := services.NewAnalyzer(gen, stubTranscriber{}, log, nil)
	coordinator := services.NewAudioCoordinator(0)
	interview := services.NewInterviewService(extractor, questions, analyzer, nil, log, coordinator, nil)

	router := gin.New()
	routes.SetupInterviewRoutes(router.Group("/"), controllers.NewInterviewController(interview, extractor, nil))
	return router
}

func multipartBody(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte(content))
	for k, v := range extra {
		writer.WriteField(k, v)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

const testFeaturesJSON = `{
  "skills": ["Go"],
  "experience": [{"title": "Backend Developer", "duration": "2019-2023", "technologies": ["Go"]}],
  "education": [],
  "certifications": []
}`

const testQuestionsJSON = `{"questions": [
  {"text": "What is Go?", "difficulty": "basic", "category": "basic"},
  {"text": "What is a channel?", "difficulty": "basic", "category": "basic"}
]}`

func TestStartInterviewEndpoint(t *testing.T) {
	router := newTestRouter(&stubGenerator{responses: []string{testFeaturesJSON, testQuestionsJSON}})

	body, contentType := multipartBody(t, "resume", "resume.txt", "five years of Go", map[string]string{"topic": "Go"})
	req := httptest.NewRequest(http.MethodPost, "/interview/start", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Session struct {
			Phase     string `json:"phase"`
			Questions []struct {
				Text string `json:"text"`
			} `json:"questions"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.Success || resp.Session.Phase != "topic" {
		t.Errorf("response = %s", w.Body.String())
	}
	if len(resp.Session.Questions) != 2 {
		t.Errorf("questions = %d, want 2", len(resp.Session.Questions))
	}
}

func TestStartInterviewMissingTopic(t *testing.T) {
	router := newTestRouter(&stubGenerator{})

	body, contentType := multipartBody(t, "resume", "resume.txt", "resume", nil)
	req := httptest.NewRequest(http.MethodPost, "/interview/start", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAdvanceBeforeTurnComplete(t *testing.T) {
	router := newTestRouter(&stubGenerator{responses: []string{testFeaturesJSON, testQuestionsJSON}})

	body, contentType := multipartBody(t, "resume", "resume.txt", "resume", map[string]string{"topic": "Go"})
	req := httptest.NewRequest(http.MethodPost, "/interview/start", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("start failed: %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/interview/advance", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("advance status = %d, want 409", w.Code)
	}
}

func TestScoreResumeEndpoint(t *testing.T) {
	router := newTestRouter(&stubGenerator{})

	payload := `{"topic": "Go", "features": ` + testFeaturesJSON + `}`
	req := httptest.NewRequest(http.MethodPost, "/interview/score", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Score   int    `json:"score"`
		Level   string `json:"level"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.Success || resp.Score == 0 || resp.Level == "" {
		t.Errorf("response = %s", w.Body.String())
	}

	// Missing fields are rejected.
	req = httptest.NewRequest(http.MethodPost, "/interview/score", strings.NewReader(`{"topic": "Go"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResultsStatusEndpoint(t *testing.T) {
	router := newTestRouter(&stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/interview/results/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.Success || resp.Count != 0 {
		t.Errorf("response = %s", w.Body.String())
	}
}

func TestSubmitAnswerRequiresFile(t *testing.T) {
	router := newTestRouter(&stubGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/interview/answer", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
