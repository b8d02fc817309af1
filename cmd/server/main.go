package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ArtfulOneXD/MetaTest/internal/config"
	"github.com/ArtfulOneXD/MetaTest/internal/controllers"
	"github.com/ArtfulOneXD/MetaTest/internal/llm"
	"github.com/ArtfulOneXD/MetaTest/internal/middleware"
	"github.com/ArtfulOneXD/MetaTest/internal/models"
	"github.com/ArtfulOneXD/MetaTest/internal/services"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log.Println("Initializing services...")

	provider, err := llm.New(cfg)
	if err != nil {
		log.Fatalf("❌ Error creating LLM provider: %v", err)
	}

	var sink services.LeadSink
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		sink = services.NewNotionService(cfg.NotionToken, cfg.NotionDatabaseID)
	} else {
		log.Println("⚠️  Notion not configured - leads will only be kept locally")
	}

	leadService := services.NewLeadService(provider, sink, cfg.DataDir)
	sessionService := services.NewSessionService(cfg.InactivityWindow, cfg.MaxLiveTurns, leadService.Finalize)
	defer sessionService.Stop()
	assistantService := services.NewAssistantService(provider, sessionService)
	messengerService := services.NewMessengerService(cfg.GraphAPIBaseURL, cfg.MetaPageToken)

	// Router
	router := gin.Default()

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	webhookController := controllers.NewWebhookController(cfg.VerifyToken, sessionService, assistantService, messengerService)
	leadController := controllers.NewLeadController(leadService)
	adminController := controllers.NewAdminController(sessionService)

	// Health check
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, models.HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Service:   "Handyman Grace Messenger Bridge",
		})
	})

	// Integration status
	router.GET("/api/status", func(ctx *gin.Context) {
		ctx.JSON(200, models.StatusResponse{
			OK:             true,
			HasVerifyToken: cfg.VerifyToken != "",
			HasMetaToken:   cfg.MetaPageToken != "",
			HasLLMKey:      cfg.OpenAIAPIKey != "" || cfg.GeminiAPIKey != "",
			HasNotionToken: cfg.NotionToken != "",
		})
	})

	// Messenger webhook
	router.GET("/webhook", webhookController.Verify)
	router.POST("/webhook", middleware.VerifySignature(cfg.MetaAppSecret), webhookController.Receive)

	// Lead endpoints
	leadRoutes := router.Group("/api/leads", middleware.AdminAuth(cfg.AdminAPIKey))
	{
		leadRoutes.GET("", leadController.GetAllLeads)
		leadRoutes.GET("/stats", leadController.GetLeadStats)
		leadRoutes.GET("/:psid", leadController.GetLeadsForUser)
	}

	// Operational endpoints
	router.POST("/api/admin/sweep", middleware.AdminAuth(cfg.AdminAPIKey), adminController.Sweep)

	// Optional background sweep as a safety net for the per-session timers.
	if cfg.SweepInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				if n := sessionService.SweepInactive(time.Now()); n > 0 {
					log.Printf("Sweep finalized %d inactive sessions", n)
				}
			}
		}()
		log.Printf("Background sweep enabled every %s", cfg.SweepInterval)
	}

	port := cfg.Port
	log.Printf("Server listening on port %s", port)
	log.Printf("Webhook: http://localhost:%s/webhook", port)
	log.Printf("Health:  http://localhost:%s/health", port)

	if err := router.Run(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatalf("❌ Error starting server: %v", err)
	}
}
