package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/alirezabazmara/InterviewApp/config"
	"github.com/alirezabazmara/InterviewApp/controllers"
	"github.com/alirezabazmara/InterviewApp/db"
	"github.com/alirezabazmara/InterviewApp/logger"
	"github.com/alirezabazmara/InterviewApp/routes"
	"github.com/alirezabazmara/InterviewApp/services"
	"github.com/alirezabazmara/InterviewApp/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Environment overrides (API keys, Mongo URI) may come from a .env file.
	godotenv.Load()

	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// The response log and asked-question store persist in Mongo when a URI
	// is configured; otherwise they fall back to in-memory stores.
	var responseLog services.ResponseLog
	var askedStore services.AskedQuestionStore
	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
			zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer db.Disconnect(ctx)
		zlog.Info("connected to MongoDB")
		responseLog = db.NewResponseLogStore(db.MongoDatabase)
		askedStore = db.NewAskedQuestionsStore(db.MongoDatabase)
	} else {
		zlog.Warn("no database URI configured, using in-memory stores")
		responseLog = services.NewMemoryResponseLog()
		askedStore = services.NewMemoryAskedStore()
	}

	gemini, err := services.NewGemini(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model)
	if err != nil {
		zlog.Fatal("failed to create Gemini client", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Interview.AudioDir, os.ModePerm); err != nil {
		zlog.Fatal("failed to create audio directory", zap.Error(err))
	}

	var synthesizer services.SpeechSynthesizer
	var transcriber services.Transcriber
	if cfg.Openai.ApiKey != "" {
		speech := services.NewSpeechService(cfg.Openai.ApiKey, cfg.Interview.AudioDir, zlog)
		synthesizer = speech
		transcriber = speech
	} else {
		zlog.Warn("no OpenAI API key configured, speech synthesis and transcription disabled")
	}

	settle, err := cfg.SettleDelay()
	if err != nil {
		zlog.Fatal("invalid settle delay", zap.Error(err))
	}

	extractor := services.NewFeatureExtractor(gemini, zlog)
	questions := services.NewQuestionService(gemini, synthesizer, askedStore, zlog).
		WithCounts(cfg.Interview.TopicQuestionCount, cfg.Interview.ResumeQuestionCount)
	analyzer := services.NewAnalyzer(gemini, transcriber, responseLog, zlog)
	coordinator := services.NewAudioCoordinator(settle)

	interview := services.NewInterviewService(extractor, questions, analyzer, synthesizer, responseLog, coordinator, zlog)

	router := setupRouter(cfg, interview, extractor, synthesizer, zlog)

	port := strconv.Itoa(cfg.Server.Port)
	zlog.Info("server starting", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func setupRouter(
	cfg *config.Config,
	interview *services.InterviewService,
	extractor *services.FeatureExtractor,
	synthesizer services.SpeechSynthesizer,
	zlog *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "backend is running"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Generated question and announcement audio is served from disk.
	router.Static("/audio", cfg.Interview.AudioDir)

	ic := controllers.NewInterviewController(interview, extractor, zlog)
	sc := controllers.NewSpeechController(synthesizer)

	api := router.Group("/")
	routes.SetupInterviewRoutes(api, ic)
	routes.SetupSpeechRoutes(api, sc)

	audioWS := websocket.NewAudioHandler(interview, zlog)
	router.GET("/ws/audio", audioWS.Handle)

	return router
}
