package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/alirezabazmara/InterviewApp/models"
	"github.com/alirezabazmara/InterviewApp/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InterviewController exposes the session-facing API surface over HTTP.
type InterviewController struct {
	interview *services.InterviewService
	extractor *services.FeatureExtractor
	logger    *zap.Logger
}

func NewInterviewController(interview *services.InterviewService, extractor *services.FeatureExtractor, logger *zap.Logger) *InterviewController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewController{interview: interview, extractor: extractor, logger: logger}
}

// StartInterview accepts a resume file plus topic and runs the Idle to
// TopicQuestions transition.
func (ic *InterviewController) StartInterview(c *gin.Context) {
	topic := c.PostForm("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Topic field is required"})
		return
	}

	data, fileName, ok := readUpload(c, "resume")
	if !ok {
		return
	}

	resumeText, err := services.ExtractResumeText(data, fileName)
	if err != nil {
		ic.logger.Error("resume text extraction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error processing resume"})
		return
	}

	session, err := ic.interview.Start(c.Request.Context(), resumeText, topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// GetSession returns the current session snapshot.
func (ic *InterviewController) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "session": ic.interview.Snapshot()})
}

// AdvanceQuestion moves to the next question or the next phase.
func (ic *InterviewController) AdvanceQuestion(c *gin.Context) {
	session, err := ic.interview.Advance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// SubmitAnswer accepts one recorded answer blob for the current question
// and returns its analysis.
func (ic *InterviewController) SubmitAnswer(c *gin.Context) {
	data, _, ok := readUpload(c, "audio")
	if !ok {
		return
	}

	result, err := ic.interview.SubmitAnswer(c.Request.Context(), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "text": result.Answer, "analysis": result})
}

// FinishInterview completes the session and returns accumulated results.
func (ic *InterviewController) FinishInterview(c *gin.Context) {
	session, err := ic.interview.Finish(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session, "results": session.Results})
}

// RestartSession destroys the current run: capture cancelled, response log
// cleared, session back to idle.
func (ic *InterviewController) RestartSession(c *gin.Context) {
	session, err := ic.interview.Restart(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Responses cleared", "session": session})
}

// GetResults returns the full response log.
func (ic *InterviewController) GetResults(c *gin.Context) {
	results, err := ic.interview.Results(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// GetResultsStatus returns the response count and the latest record.
func (ic *InterviewController) GetResultsStatus(c *gin.Context) {
	count, last, err := ic.interview.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "lastResponse": last})
}

// UploadResume extracts text and features from a resume without starting an
// interview.
func (ic *InterviewController) UploadResume(c *gin.Context) {
	data, fileName, ok := readUpload(c, "resume")
	if !ok {
		return
	}

	resumeText, err := services.ExtractResumeText(data, fileName)
	if err != nil {
		ic.logger.Error("resume text extraction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error processing resume"})
		return
	}

	features, err := ic.extractor.Extract(c.Request.Context(), resumeText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "text": resumeText, "features": features})
}

type scoreRequest struct {
	Features *models.FeatureSet `json:"features" binding:"required"`
	Topic    string             `json:"topic" binding:"required"`
}

// ScoreResume rates a feature set against a topic.
func (ic *InterviewController) ScoreResume(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Features and topic are required"})
		return
	}

	score := services.ScoreResume(*req.Features, req.Topic)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"score":   score.Score,
		"level":   score.Level,
		"details": score.Details,
	})
}

func readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded."})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read uploaded file."})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read uploaded file."})
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}

// respondError maps service failures onto HTTP statuses while keeping the
// success/message envelope the frontend expects.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidPhase),
		errors.Is(err, services.ErrTurnIncomplete),
		errors.Is(err, services.ErrNoCapture):
		status = http.StatusConflict
	case errors.Is(err, services.ErrStaleSession):
		status = http.StatusGone
	case errors.Is(err, services.ErrTranscription):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}
