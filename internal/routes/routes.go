package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/almas-cp/Saner-sub000/internal/config"
	"github.com/almas-cp/Saner-sub000/internal/handlers"
	"github.com/almas-cp/Saner-sub000/internal/middleware"
	"github.com/almas-cp/Saner-sub000/internal/openrouter"
	"github.com/almas-cp/Saner-sub000/internal/presence"
	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/almas-cp/Saner-sub000/internal/services"
	chatws "github.com/almas-cp/Saner-sub000/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, log zerolog.Logger, redisClient *redis.Client) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	coinRepo := repository.NewCoinRepository(db)
	wellnessRepo := repository.NewWellnessRepository(db)
	companionRepo := repository.NewCompanionRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}
	var presenceStore *presence.Store
	if redisClient != nil {
		presenceStore = presence.NewStore(redisClient, "saner")
	}

	profileService := services.NewProfileService(profileRepo)
	feedService := services.NewFeedService(postRepo, connectionRepo, profileService)
	chatService := services.NewChatService(db, messageRepo, connectionRepo, profileRepo)
	consultationService := services.NewConsultationService(db, consultationRepo, chatRepo, archiveRepo, coinRepo, profileService)
	wellnessService := services.NewWellnessService(db, wellnessRepo, coinRepo)

	var completions *openrouter.Client
	if cfg.OpenRouterAPIKey != "" {
		client, err := openrouter.NewClient(openrouter.Config{
			APIKey:    cfg.OpenRouterAPIKey,
			ModelName: cfg.OpenRouterModel,
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("companion sends disabled: openrouter client init failed")
		} else {
			completions = client
		}
	}
	companionService := services.NewCompanionService(companionRepo, completions, log)

	authHandler := handlers.NewAuthHandler(db, userRepo, profileService, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService, storageService)
	postHandler := handlers.NewPostHandler(feedService, storageService)
	connectionHandler := handlers.NewConnectionHandler(feedService)
	messageHandler := handlers.NewMessageHandler(chatService)
	consultationHandler := handlers.NewConsultationHandler(consultationService)
	wellnessHandler := handlers.NewWellnessHandler(wellnessService)
	companionHandler := handlers.NewCompanionHandler(companionService)
	presenceHandler := handlers.NewPresenceHandler(presenceStore)

	hub := chatws.NewHub()
	go hub.Run()
	gateway := &chatws.Gateway{
		Chats:         chatService,
		Consultations: consultationService,
		Presence:      presenceStore,
		Logger:        log,
	}
	wsHandler := handlers.NewWSHandler(hub, gateway, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	profiles := v1.Group("/profiles")
	profiles.Get("/search", profileHandler.Search)
	profiles.Get("/:id", profileHandler.Get)
	profiles.Get("/:id/posts", postHandler.ListByAuthor)
	profiles.Get("/:id/presence", presenceHandler.Get)
	v1.Put("/profile", profileHandler.Update)
	v1.Post("/profile/avatar", profileHandler.UploadAvatar)
	v1.Get("/professionals", profileHandler.ListProfessionals)

	posts := v1.Group("/posts")
	posts.Post("", postHandler.Create)
	posts.Post("/image", postHandler.UploadImage)
	posts.Get("", postHandler.List)
	posts.Get("/:id", postHandler.Get)
	posts.Delete("/:id", postHandler.Delete)

	connections := v1.Group("/connections")
	connections.Post("", connectionHandler.Request)
	connections.Get("", connectionHandler.List)
	connections.Put("/:id", connectionHandler.Respond)
	connections.Get("/with/:id", connectionHandler.GetWith)

	messages := v1.Group("/messages")
	messages.Get("/conversations", messageHandler.ListConversations)
	messages.Get("/with/:id", messageHandler.ListMessages)
	messages.Post("/with/:id", messageHandler.Send)
	messages.Put("/with/:id/read", messageHandler.MarkThreadRead)

	consultations := v1.Group("/consultations")
	consultations.Post("", consultationHandler.Request)
	consultations.Get("", consultationHandler.List)
	consultations.Get("/chats", consultationHandler.ListChats)
	consultations.Get("/archived", consultationHandler.ListArchived)
	consultations.Get("/archived/:id/messages", consultationHandler.ArchivedMessages)
	consultations.Post("/:id/accept", consultationHandler.Accept)
	consultations.Post("/:id/reject", consultationHandler.Reject)
	consultations.Post("/:id/end", consultationHandler.End)
	consultations.Delete("/:id", consultationHandler.Delete)
	consultations.Get("/:id/chat", consultationHandler.GetChat)
	consultations.Get("/:id/messages", consultationHandler.ListMessages)
	consultations.Post("/:id/messages", consultationHandler.Send)
	consultations.Put("/:id/read", consultationHandler.MarkRead)

	wellness := v1.Group("/wellness")
	wellness.Post("/mood", wellnessHandler.LogMood)
	wellness.Get("/mood", wellnessHandler.MoodHistory)
	wellness.Post("/breath", wellnessHandler.CompleteBreathSession)
	wellness.Get("/breath", wellnessHandler.BreathHistory)
	wellness.Get("/coins", wellnessHandler.CoinBalance)

	companion := v1.Group("/companion")
	companion.Get("/messages", companionHandler.History)
	companion.Post("/messages", companionHandler.Send)

	api.Use("/v1/ws", wsHandler.Auth)
	api.Get("/v1/ws", websocket.New(wsHandler.Handle))
}
