package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/promptatrium/backend/internal/application/billing"
	communityapp "github.com/promptatrium/backend/internal/application/community"
	identityapp "github.com/promptatrium/backend/internal/application/identity"
	marketplaceapp "github.com/promptatrium/backend/internal/application/marketplace"
	mediaapp "github.com/promptatrium/backend/internal/application/media"
	promptapp "github.com/promptatrium/backend/internal/application/prompt"
	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/auth"
	"github.com/promptatrium/backend/internal/infrastructure/cache"
	"github.com/promptatrium/backend/internal/infrastructure/config"
	"github.com/promptatrium/backend/internal/infrastructure/event"
	"github.com/promptatrium/backend/internal/infrastructure/llm"
	"github.com/promptatrium/backend/internal/infrastructure/logger"
	"github.com/promptatrium/backend/internal/infrastructure/payment"
	"github.com/promptatrium/backend/internal/infrastructure/persistence"
	"github.com/promptatrium/backend/internal/infrastructure/scheduler"
	"github.com/promptatrium/backend/internal/infrastructure/storage"
	"github.com/promptatrium/backend/internal/interfaces/http/handler"
	"github.com/promptatrium/backend/internal/interfaces/http/middleware"
	"github.com/promptatrium/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			PromptAtrium API
//	@version		1.0
//	@description	Multi-tenant backend for sharing, curating and selling AI image-generation prompts.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/promptatrium/backend
//	@contact.email	support@promptatrium.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting PromptAtrium",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	promptRepo := persistence.NewGormPromptRepository(db.DB)
	ratingRepo := persistence.NewGormRatingRepository(db.DB)
	likeRepo := persistence.NewGormPromptLikeRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	communityRepo := persistence.NewGormCommunityRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	inviteRepo := persistence.NewGormInviteRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	disputeRepo := persistence.NewGormDisputeRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Choose how services publish events. With the outbox processor
	// enabled, events go through the outbox table so they survive a
	// crash between the state change and delivery. Otherwise they are
	// dispatched in-process.
	var publisher shared.EventPublisher = eventBus
	if cfg.Event.ProcessorEnabled {
		publisher = event.NewDurablePublisher(db.DB, eventSerializer)
	}

	// Trending cache: Redis-backed when Redis is configured, otherwise
	// a per-process ranking that resets on restart.
	var trendingCache cache.TrendingCache
	if cfg.Redis.Host != "" {
		redisTrending, err := cache.NewRedisTrendingCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory trending cache", zap.Error(err))
			trendingCache = cache.NewInMemoryTrendingCache()
		} else {
			trendingCache = redisTrending
			log.Info("Using Redis trending cache")
		}
	} else {
		trendingCache = cache.NewInMemoryTrendingCache()
	}

	// Idempotency store for webhook deduplication
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Token blacklist for logout
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
			blacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			blacklist = redisBlacklist
		}
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Prompt enhancement provider chain (OpenAI -> Gemini -> Mistral)
	enhancementChain, err := llm.NewChainFromConfig(cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to build enhancement chain", zap.Error(err))
	}

	// Payout gateway
	var payoutGateway billing.PayoutGateway
	if cfg.PayPal.Enabled {
		paypalGateway, err := payment.NewPayPalAdapter(payment.NewPayPalConfig(cfg.PayPal))
		if err != nil {
			log.Fatal("Failed to configure PayPal gateway", zap.Error(err))
		}
		payoutGateway = paypalGateway
		log.Info("PayPal payout gateway configured",
			zap.String("environment", cfg.PayPal.Environment),
		)
	} else {
		payoutGateway = payment.NewStubPayoutGateway()
		log.Warn("PayPal disabled, payouts use the stub gateway")
	}

	// Object storage for preview images and community icons
	var objectStorage mediaapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to configure object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("S3 object storage configured",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, media uploads use the stub backend")
	}

	// Identity services (auth, user, role, tenant)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, roleRepo, tenantRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, log)
	tenantService := identityapp.NewTenantService(tenantRepo, userRepo, roleRepo, blacklist, jwtService.GetRefreshTokenExpiration(), log)

	// Prompt services
	promptService := promptapp.NewPromptService(promptRepo, ratingRepo, likeRepo, membershipRepo, trendingCache, publisher, log)
	collectionService := promptapp.NewCollectionService(collectionRepo, promptRepo, trendingCache, log)
	enhanceService := promptapp.NewEnhanceService(enhancementChain, log)

	// Community service
	communityService := communityapp.NewService(communityRepo, membershipRepo, inviteRepo, log)

	// Marketplace services
	listingService := marketplaceapp.NewListingService(listingRepo, promptRepo, log)
	orderService := marketplaceapp.NewOrderService(orderRepo, listingRepo, ledgerRepo, publisher, log)
	disputeService := marketplaceapp.NewDisputeService(disputeRepo, orderRepo, publisher, log)

	// Billing services
	ledgerService := billingapp.NewLedgerService(ledgerRepo, log)
	payoutService := billingapp.NewPayoutService(payoutRepo, ledgerRepo, userRepo, payoutGateway, publisher, log)
	webhookService := billingapp.NewPayPalWebhookService(payoutRepo, payoutGateway, idempotencyStore, publisher, log)

	// Media service
	mediaService := mediaapp.NewService(promptRepo, communityRepo, membershipRepo, objectStorage)
	if cfg.Storage.PresignExpiry > 0 {
		mediaConfig := mediaapp.DefaultServiceConfig()
		mediaConfig.UploadURLExpiry = cfg.Storage.PresignExpiry
		mediaService.SetConfig(mediaConfig)
	}

	// Register event handlers for cross-context integration
	// Prompt removed -> drop from trending
	trendingRemovalHandler := promptapp.NewTrendingRemovalHandler(trendingCache, log)
	eventBus.Subscribe(trendingRemovalHandler)

	// Order completed/refunded -> credit ledger entries.
	// Ledger handlers move money, so they get idempotency wrapping:
	// outbox delivery is at-least-once and a redelivered event must
	// not post a second entry.
	orderLedgerHandler := billingapp.NewOrderLedgerHandler(ledgerRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(orderLedgerHandler, idempotencyStore, log,
		event.WithIdempotencyMetrics(event.GlobalIdempotencyMetrics)))

	// Payout completed -> debit ledger entries
	payoutLedgerHandler := billingapp.NewPayoutLedgerHandler(ledgerRepo, payoutRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(payoutLedgerHandler, idempotencyStore, log,
		event.WithIdempotencyMetrics(event.GlobalIdempotencyMetrics)))

	log.Info("Event handlers registered",
		zap.Strings("trending_removal_events", trendingRemovalHandler.EventTypes()),
		zap.Strings("order_ledger_events", orderLedgerHandler.EventTypes()),
		zap.Strings("payout_ledger_events", payoutLedgerHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Start the outbox processor when durable delivery is enabled.
	// It reads events from the outbox table and feeds them to the bus.
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Start the payout reconciliation scheduler. Webhooks drive payout
	// status normally; the scheduler re-checks batches whose webhooks
	// never arrived.
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.DefaultSchedulerConfig()
		schedulerConfig.MaxConcurrentJobs = cfg.Scheduler.MaxConcurrentJobs
		schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
		schedulerConfig.RetryAttempts = cfg.Scheduler.RetryAttempts
		schedulerConfig.RetryDelay = cfg.Scheduler.RetryDelay

		syncExecutor := scheduler.NewPayoutSyncExecutor(payoutService, log)
		payoutScheduler := scheduler.NewScheduler(schedulerConfig, syncExecutor, log)
		if err := payoutScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start payout scheduler", zap.Error(err))
		}
		defer func() {
			if err := payoutScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping payout scheduler", zap.Error(err))
			}
		}()

		triggerConfig := scheduler.DefaultPayoutSyncTriggerConfig()
		if cfg.Scheduler.PollInterval > 0 {
			triggerConfig.PollInterval = cfg.Scheduler.PollInterval
		}
		if cfg.Scheduler.BatchLimit > 0 {
			triggerConfig.BatchLimit = cfg.Scheduler.BatchLimit
		}

		syncTrigger := scheduler.NewPayoutSyncTrigger(triggerConfig, payoutScheduler, payoutRepo, log)
		if err := syncTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start payout sync trigger", zap.Error(err))
		}
		defer func() {
			if err := syncTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping payout sync trigger", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	promptHandler := handler.NewPromptHandler(promptService, enhanceService)
	collectionHandler := handler.NewCollectionHandler(collectionService)
	communityHandler := handler.NewCommunityHandler(communityService)
	listingHandler := handler.NewListingHandler(listingService)
	orderHandler := handler.NewOrderHandler(orderService)
	disputeHandler := handler.NewDisputeHandler(disputeService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	payoutHandler := handler.NewPayoutHandler(payoutService)
	webhookHandler := handler.NewPayPalWebhookHandler(webhookService)
	mediaHandler := handler.NewMediaHandler(mediaService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// PayPal webhook endpoint (no authentication, signature-verified).
	// Called directly by PayPal for payout status notifications.
	engine.POST("/api/v1/billing/paypal/webhook", webhookHandler.HandleWebhook)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/oidc",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/billing/paypal",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant context after JWT: resolves the tenant from claims or the
	// X-Tenant-ID header and attaches it to the request logger. Not
	// required here because public endpoints carry no tenant.
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Required = false
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Identity domain (authentication) - public + session routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/oidc", authHandler.LoginWithOIDC)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// User management routes
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.POST("", userHandler.CreateUser)
	userRoutes.GET("", userHandler.ListUsers)
	userRoutes.PATCH("/me", userHandler.UpdateProfile)
	userRoutes.GET("/:id", userHandler.GetUser)
	userRoutes.PUT("/:id/roles", userHandler.AssignRoles)
	userRoutes.POST("/:id/activate", userHandler.ActivateUser)
	userRoutes.POST("/:id/deactivate", userHandler.DeactivateUser)
	userRoutes.DELETE("/:id", userHandler.DeleteUser)

	// Role management routes
	roleRoutes := router.NewDomainGroup("roles", "/roles")
	roleRoutes.POST("", roleHandler.CreateRole)
	roleRoutes.GET("", roleHandler.ListRoles)
	roleRoutes.GET("/:id", roleHandler.GetRole)
	roleRoutes.PATCH("/:id", roleHandler.UpdateRole)
	roleRoutes.DELETE("/:id", roleHandler.DeleteRole)

	// Tenant management routes
	tenantRoutes := router.NewDomainGroup("tenants", "/tenants")
	tenantRoutes.POST("", tenantHandler.CreateTenant)
	tenantRoutes.GET("", tenantHandler.ListTenants)
	tenantRoutes.GET("/:id", tenantHandler.GetTenant)
	tenantRoutes.PATCH("/:id", tenantHandler.UpdateTenant)
	tenantRoutes.POST("/:id/suspend", tenantHandler.SuspendTenant)
	tenantRoutes.POST("/:id/activate", tenantHandler.ActivateTenant)

	// Prompt domain (CRUD, publishing, moderation, engagement, enhancement)
	promptRoutes := router.NewDomainGroup("prompts", "/prompts")
	promptRoutes.POST("", promptHandler.CreatePrompt)
	promptRoutes.GET("", promptHandler.ListPrompts)
	promptRoutes.GET("/trending", promptHandler.TrendingPrompts)
	promptRoutes.POST("/enhance", promptHandler.EnhancePrompt)
	promptRoutes.GET("/slug/:slug", promptHandler.GetPromptBySlug)
	promptRoutes.GET("/:id", promptHandler.GetPrompt)
	promptRoutes.PUT("/:id", promptHandler.UpdatePrompt)
	promptRoutes.DELETE("/:id", promptHandler.DeletePrompt)
	promptRoutes.POST("/:id/publish", promptHandler.PublishPrompt)
	promptRoutes.POST("/:id/unpublish", promptHandler.UnpublishPrompt)
	promptRoutes.POST("/:id/approve", promptHandler.ApprovePrompt)
	promptRoutes.POST("/:id/flag", promptHandler.FlagPrompt)
	promptRoutes.POST("/:id/remove", promptHandler.RemovePrompt)
	promptRoutes.POST("/:id/like", promptHandler.LikePrompt)
	promptRoutes.DELETE("/:id/like", promptHandler.UnlikePrompt)
	promptRoutes.POST("/:id/use", promptHandler.RecordUse)
	promptRoutes.POST("/:id/ratings", promptHandler.RatePrompt)
	promptRoutes.GET("/:id/ratings", promptHandler.ListRatings)

	// Collection routes
	collectionRoutes := router.NewDomainGroup("collections", "/collections")
	collectionRoutes.POST("", collectionHandler.CreateCollection)
	collectionRoutes.GET("", collectionHandler.ListPublicCollections)
	collectionRoutes.GET("/mine", collectionHandler.ListOwnCollections)
	collectionRoutes.GET("/:id", collectionHandler.GetCollection)
	collectionRoutes.PATCH("/:id", collectionHandler.UpdateCollection)
	collectionRoutes.DELETE("/:id", collectionHandler.DeleteCollection)
	collectionRoutes.POST("/:id/prompts", collectionHandler.SavePrompt)
	collectionRoutes.DELETE("/:id/prompts/:prompt_id", collectionHandler.RemovePrompt)
	collectionRoutes.POST("/:id/reorder", collectionHandler.ReorderCollection)

	// Community domain (membership, invites, moderation)
	communityRoutes := router.NewDomainGroup("communities", "/communities")
	communityRoutes.POST("", communityHandler.CreateCommunity)
	communityRoutes.GET("", communityHandler.ListCommunities)
	communityRoutes.GET("/memberships", communityHandler.ListMyMemberships)
	communityRoutes.GET("/slug/:slug", communityHandler.GetCommunityBySlug)
	communityRoutes.POST("/invites/:token/accept", communityHandler.AcceptInvite)
	communityRoutes.DELETE("/invites/:invite_id", communityHandler.RevokeInvite)
	communityRoutes.GET("/:id", communityHandler.GetCommunity)
	communityRoutes.PATCH("/:id", communityHandler.UpdateCommunity)
	communityRoutes.DELETE("/:id", communityHandler.DeleteCommunity)
	communityRoutes.GET("/:id/sub-communities", communityHandler.ListSubCommunities)
	communityRoutes.POST("/:id/join", communityHandler.JoinCommunity)
	communityRoutes.POST("/:id/leave", communityHandler.LeaveCommunity)
	communityRoutes.GET("/:id/members", communityHandler.ListMembers)
	communityRoutes.POST("/:id/invites", communityHandler.CreateInvite)
	communityRoutes.GET("/:id/invites", communityHandler.ListInvites)
	communityRoutes.PUT("/:id/members/:member_id/role", communityHandler.ChangeMemberRole)
	communityRoutes.POST("/:id/members/:member_id/ban", communityHandler.BanMember)
	communityRoutes.POST("/:id/members/:member_id/unban", communityHandler.UnbanMember)
	communityRoutes.POST("/:id/transfer-ownership", communityHandler.TransferOwnership)

	// Marketplace domain (listings, orders, disputes)
	marketplaceRoutes := router.NewDomainGroup("marketplace", "/marketplace")
	marketplaceRoutes.POST("/listings", listingHandler.CreateListing)
	marketplaceRoutes.GET("/listings", listingHandler.ListListings)
	marketplaceRoutes.GET("/listings/:id", listingHandler.GetListing)
	marketplaceRoutes.PATCH("/listings/:id", listingHandler.UpdateListing)
	marketplaceRoutes.POST("/listings/:id/activate", listingHandler.ActivateListing)
	marketplaceRoutes.POST("/listings/:id/pause", listingHandler.PauseListing)
	marketplaceRoutes.POST("/listings/:id/delist", listingHandler.DelistListing)
	marketplaceRoutes.POST("/orders", orderHandler.CreateOrder)
	marketplaceRoutes.GET("/orders", orderHandler.ListOrders)
	marketplaceRoutes.GET("/orders/:id", orderHandler.GetOrder)
	marketplaceRoutes.POST("/orders/:id/pay", orderHandler.PayOrder)
	marketplaceRoutes.POST("/orders/:id/complete", orderHandler.CompleteOrder)
	marketplaceRoutes.POST("/orders/:id/cancel", orderHandler.CancelOrder)
	marketplaceRoutes.POST("/orders/:id/refund", orderHandler.RefundOrder)
	marketplaceRoutes.POST("/disputes", disputeHandler.OpenDispute)
	marketplaceRoutes.GET("/disputes", disputeHandler.ListDisputes)
	marketplaceRoutes.GET("/disputes/:id", disputeHandler.GetDispute)
	marketplaceRoutes.POST("/disputes/:id/pickup", disputeHandler.PickUpDispute)
	marketplaceRoutes.POST("/disputes/:id/resolve", disputeHandler.ResolveDispute)
	marketplaceRoutes.POST("/disputes/:id/close", disputeHandler.CloseDispute)

	// Billing domain (credit ledger, payouts)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/ledger", ledgerHandler.ListEntries)
	billingRoutes.GET("/balance", ledgerHandler.GetBalance)
	billingRoutes.GET("/summary", ledgerHandler.GetSummary)
	billingRoutes.POST("/topup", ledgerHandler.Topup)
	billingRoutes.POST("/adjustments", ledgerHandler.Adjust)
	billingRoutes.POST("/payouts", payoutHandler.BuildBatch)
	billingRoutes.GET("/payouts", payoutHandler.ListBatches)
	billingRoutes.GET("/payouts/:id", payoutHandler.GetBatch)
	billingRoutes.POST("/payouts/:id/submit", payoutHandler.SubmitBatch)
	billingRoutes.POST("/payouts/:id/sync", payoutHandler.SyncBatchStatus)

	// Media routes (presigned upload flow)
	mediaRoutes := router.NewDomainGroup("media", "/media")
	mediaRoutes.POST("/previews/initiate", mediaHandler.InitiatePreviewUpload)
	mediaRoutes.POST("/previews/:id/confirm", mediaHandler.ConfirmPreviewUpload)
	mediaRoutes.DELETE("/previews/:id", mediaHandler.DeletePreview)
	mediaRoutes.GET("/previews/:id/url", mediaHandler.PreviewDownloadURL)
	mediaRoutes.POST("/icons/initiate", mediaHandler.InitiateIconUpload)
	mediaRoutes.POST("/icons/:id/confirm", mediaHandler.ConfirmIconUpload)

	// Register all domain groups
	r.Register(authRoutes).
		Register(userRoutes).
		Register(roleRoutes).
		Register(tenantRoutes).
		Register(promptRoutes).
		Register(collectionRoutes).
		Register(communityRoutes).
		Register(marketplaceRoutes).
		Register(billingRoutes).
		Register(mediaRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
