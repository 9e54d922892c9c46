package controllers

import (
	"net/http"

	"github.com/alirezabazmara/InterviewApp/services"
	"github.com/gin-gonic/gin"
)

// SpeechController exposes standalone text-to-speech conversion.
type SpeechController struct {
	synthesizer services.SpeechSynthesizer
}

func NewSpeechController(synthesizer services.SpeechSynthesizer) *SpeechController {
	return &SpeechController{synthesizer: synthesizer}
}

type speechRequest struct {
	Text string `json:"text" binding:"required"`
}

// TextToSpeech synthesizes the given text and returns the audio URL.
func (sc *SpeechController) TextToSpeech(c *gin.Context) {
	var req speechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Text is required"})
		return
	}

	if sc.synthesizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Speech synthesis is not configured"})
		return
	}

	audioURL, err := sc.synthesizer.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate speech"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "audioUrl": audioURL})
}
