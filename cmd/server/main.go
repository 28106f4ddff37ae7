package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/cvstudio-api/internal/config"
	"github.com/yourusername/cvstudio-api/internal/handler"
	"github.com/yourusername/cvstudio-api/internal/middleware"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/repository"
	"github.com/yourusername/cvstudio-api/internal/service"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting CVStudio API")

	// ── Database ─────────────────────────────────────────
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connected")

	// ── Repositories ─────────────────────────────────────
	userRepo := repository.NewUserRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	templateRepo := repository.NewTemplateRepo(pool)
	txRepo := repository.NewTransactionRepo(pool)

	// ── Services ─────────────────────────────────────────
	aiFactory := handler.NewAIFactory(cfg)
	renderer := service.NewPDFRenderer(cfg.ChromePath)
	catalog := service.NewModelCatalog(cfg.ModelCatalogURL)
	stripeSvc := service.NewStripeService(cfg, userRepo, txRepo)

	// ── Handlers ─────────────────────────────────────────
	authHandler := handler.NewAuthHandler(userRepo)
	profileHandler := handler.NewProfileHandler(profileRepo, userRepo, txRepo, aiFactory)
	templateHandler := handler.NewTemplateHandler(templateRepo, profileRepo, userRepo, txRepo, aiFactory, renderer)
	generateHandler := handler.NewGenerateHandler(profileRepo, userRepo, txRepo, aiFactory, renderer, catalog)
	billingHandler := handler.NewBillingHandler(userRepo, txRepo, stripeSvc)

	// ── Middleware ────────────────────────────────────────
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.FirebaseProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "cvstudio-api",
			"time":    time.Now().UTC(),
		})
	})

	// Stripe webhook (unauthenticated; signature-verified)
	r.POST("/api/billing/webhook", billingHandler.StripeWebhook)

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/api", authMiddleware.Authenticate(), rateLimiter.Limit())
	{
		// After auth middleware verifies Firebase token, resolve internal user ID
		api.Use(resolveUserID(userRepo))

		// Auth
		api.POST("/auth/session", authHandler.CreateSession)
		api.PUT("/auth/api-key", authHandler.UpdateAPIKey)

		// Profiles
		api.GET("/profiles", profileHandler.ListProfiles)
		api.POST("/profiles", profileHandler.CreateProfile)
		api.GET("/profiles/:id", profileHandler.GetProfile)
		api.PUT("/profiles/:id", profileHandler.UpdateProfile)
		api.DELETE("/profiles/:id", profileHandler.DeleteProfile)
		api.POST("/profiles/import",
			middleware.RequireCredits(model.CostImport, userRepo), profileHandler.ImportProfile)
		api.POST("/profiles/:id/linkedin-export",
			middleware.RequireCredits(model.CostLinkedInExport, userRepo), profileHandler.LinkedInExport)
		api.POST("/profiles/:id/enrich",
			middleware.RequireCredits(model.CostEnrich, userRepo), profileHandler.EnrichProfile)

		// Templates
		api.GET("/templates", templateHandler.ListTemplates)
		api.POST("/templates", templateHandler.UploadTemplate)
		api.GET("/templates/:id", templateHandler.GetTemplate)
		api.DELETE("/templates/:id", templateHandler.DeleteTemplate)
		api.POST("/templates/:id/fill",
			middleware.RequireCredits(model.CostTemplateFill, userRepo), templateHandler.FillTemplate)

		// Generation
		api.POST("/generate",
			middleware.RequireCredits(model.CostGenerate, userRepo), generateHandler.Generate)
		api.GET("/models", generateHandler.ListModels)
		api.GET("/themes", generateHandler.ListThemes)

		// Billing
		api.GET("/credits", billingHandler.GetCredits)
		api.GET("/transactions", billingHandler.ListTransactions)
		api.POST("/billing/checkout", billingHandler.CreateCheckout)
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // fill/generate requests wait on LLM calls
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("CVStudio API server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// resolveUserID maps Firebase UID to internal user UUID for all subsequent handlers
func resolveUserID(userRepo *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		firebaseUID := middleware.GetFirebaseUID(c)
		if firebaseUID == "" {
			c.Next()
			return
		}

		user, err := userRepo.FindByFirebaseUID(c.Request.Context(), firebaseUID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve user ID")
			c.Next()
			return
		}
		if user != nil {
			c.Set(middleware.ContextKeyUserID, user.ID.String())
		}

		c.Next()
	}
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Msg("request")
	}
}
