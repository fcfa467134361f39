package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"chatstack_backend/internal/controller"
	"chatstack_backend/internal/middleware"
	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/ai"
	"chatstack_backend/pkg/config"
	"chatstack_backend/pkg/cron"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/email"
	"chatstack_backend/pkg/logger"
	"chatstack_backend/pkg/payment"
	"chatstack_backend/pkg/seed"
	"chatstack_backend/pkg/utils/jwt"
	"chatstack_backend/pkg/utils/storage"
	"chatstack_backend/pkg/vector"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", controller.Signup)
	auth.Post("/login", controller.Login)
	auth.Get("/logout", controller.Logout)

	// Google OAuth
	google := app.Group("/auth/google")
	google.Get("/", controller.GoogleLogin)
	google.Get("/callback", controller.GoogleCallback)

	// Protected user routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)

	// Plan routes
	plans := api.Group("/plan")
	plans.Get("/", controller.ListPlans)
	plans.Get("/my", middleware.AuthMiddleware(), controller.GetMyPlan)
	plans.Get("/:id", controller.GetPlan)

	// Subscription routes
	subscriptions := api.Group("/subscription", middleware.AuthMiddleware())
	subscriptions.Get("/", controller.GetMySubscription)
	subscriptions.Post("/cancel", controller.CancelSubscription)

	// Payment routes
	payments := api.Group("/payment", middleware.AuthMiddleware())
	payments.Post("/create-order", controller.CreateOrder)
	payments.Post("/verify", controller.VerifyOrder)

	// Chat & resource routes
	chat := api.Group("/chat")
	chat.Post("/upload", middleware.AuthMiddleware(), controller.UploadFile)
	chat.Get("/files", middleware.AuthMiddleware(), controller.ListFiles)
	chat.Post("/files/active", middleware.AuthMiddleware(), controller.SetActiveFile)
	chat.Delete("/files/:name", middleware.AuthMiddleware(), controller.DeleteFile)
	chat.Post("/url", middleware.AuthMiddleware(), controller.UploadURL)
	chat.Get("/urls", middleware.AuthMiddleware(), controller.ListURLs)
	chat.Put("/url/active", middleware.AuthMiddleware(), controller.SetActiveURL)
	chat.Delete("/url", middleware.AuthMiddleware(), controller.DeleteURL)
	chat.Get("/keys", middleware.AuthMiddleware(), controller.ListAPIKeys)
	chat.Post("/verify-key", controller.VerifyAPIKey)

	// Programmatic query endpoint, authenticated by API key
	chat.Post("/", middleware.APIKeyMiddleware(), controller.QueryAI)
}

func main() {
	cfg := config.Load()

	if err := logger.Init(os.Getenv("ENV") != "production", logger.InfoLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Database.URL == "" {
		logger.Get().Fatal("DATABASE_URL is not set")
	}

	jwt.Init(cfg.JWT.Secret)
	middleware.InitAPIKeyMiddleware(cfg.JWT.APIKeySecret)

	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey, cfg.Email.From); err != nil {
			logger.Get().Error("could not initialize email service", zap.Error(err))
		}
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Plan{},
		&model.PlanFeature{},
		&model.Subscription{},
		&model.File{},
		&model.WebsiteURL{},
		&model.APIKey{},
	)
	if err != nil {
		logger.Get().Warn("migration warning", zap.Error(err))
	}

	seed.SeedPlans(database.GetDB())

	store, err := storage.NewS3Store(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		logger.Get().Fatal("could not initialize file storage", zap.Error(err))
	}

	vectorClient, err := vector.NewClient(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.APIKey, cfg.Qdrant.UseTLS)
	if err != nil {
		logger.Get().Fatal("could not initialize vector store", zap.Error(err))
	}

	aiClient := ai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.ChatModel)
	orchestrator := &ai.Orchestrator{AI: aiClient, Vectors: vectorClient}

	razorClient := payment.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	controller.Init(cfg, store, razorClient, orchestrator, vectorClient)
	cron.InitSubscriptionExpiryCron()

	app := fiber.New(fiber.Config{
		BodyLimit: storage.MaxFileSize + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New())

	setupRoutes(app)

	logger.Get().Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.Get().Fatal("server stopped", zap.Error(err))
	}
}
