package routes

import (
	"github.com/alirezabazmara/InterviewApp/controllers"
	"github.com/gin-gonic/gin"
)

// SetupInterviewRoutes sets up the interview session routes
func SetupInterviewRoutes(router *gin.RouterGroup, ic *controllers.InterviewController) {
	interview := router.Group("/interview")
	{
		interview.POST("/start", ic.StartInterview)
		interview.GET("/session", ic.GetSession)
		interview.POST("/advance", ic.AdvanceQuestion)
		interview.POST("/answer", ic.SubmitAnswer)
		interview.POST("/finish", ic.FinishInterview)
		interview.POST("/restart", ic.RestartSession)
		interview.GET("/results", ic.GetResults)
		interview.GET("/results/status", ic.GetResultsStatus)
		interview.POST("/resume", ic.UploadResume)
		interview.POST("/score", ic.ScoreResume)
	}
}

// SetupSpeechRoutes sets up the standalone text-to-speech route
func SetupSpeechRoutes(router *gin.RouterGroup, sc *controllers.SpeechController) {
	router.POST("/speech", sc.TextToSpeech)
}
