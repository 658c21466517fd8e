package bootstrap

import (
	"context"
	"log"

	"doc-intelligence-be/internal/config"
	"doc-intelligence-be/internal/controller"
	"doc-intelligence-be/internal/handler"
	"doc-intelligence-be/internal/metrics"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/pkg/mailer"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/internal/service"
	"doc-intelligence-be/internal/statusstore"
	"doc-intelligence-be/internal/websocket"
	"doc-intelligence-be/pkg/docai"
	docaiazure "doc-intelligence-be/pkg/docai/azure"
	docaistub "doc-intelligence-be/pkg/docai/stub"
	"doc-intelligence-be/pkg/events"
	"doc-intelligence-be/pkg/llm/factory"

	pktNats "doc-intelligence-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "doc-intelligence-be"

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	DocumentController controller.IDocumentController
	HealthController   controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ProcessingService service.IProcessingService

	// WebSockets & Status Channel
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub

	// Observability
	Metrics *metrics.Metrics
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Job Queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Document Analysis Provider
	var docaiProvider docai.Provider
	if cfg.Azure.Endpoint != "" && cfg.Azure.Key != "" {
		docaiProvider = docaiazure.NewAzureProvider(cfg.Azure.Endpoint, cfg.Azure.Key, cfg.Azure.ModelID)
		log.Printf("[INFO] Using Document AI Provider: AZURE (%s)", cfg.Azure.ModelID)
	} else {
		docaiProvider = docaistub.NewStubProvider()
		log.Printf("[INFO] Using Document AI Provider: STUB (no Azure credentials)")
	}

	// LLM Provider based on Config
	llmModel := cfg.Ai.LLMModel
	if cfg.Ai.LLMProvider == "azure-openai" && cfg.Ai.AzureOpenAIDeployment != "" {
		llmModel = cfg.Ai.AzureOpenAIDeployment
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, factory.ProviderConfig{
		ModelName:          llmModel,
		OllamaBaseURL:      cfg.Ai.OllamaBaseURL,
		AzureOpenAIBaseURL: cfg.Ai.AzureOpenAIEndpoint,
		AzureOpenAIKey:     cfg.Ai.AzureOpenAIKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// Status Store: Redis when reachable, in-process cache otherwise
	var statusStore statusstore.Store
	var hubRedis *redis.Client
	if redisUp {
		statusStore = statusstore.NewRedisStore(rdb)
		hubRedis = rdb
	} else {
		statusStore = statusstore.NewMemoryStore()
		log.Printf("[INFO] Using in-memory status store")
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/status.log")
	wsHub := websocket.NewHub(hubRedis, wsLogger)
	go wsHub.Run()

	// Observability
	m := metrics.New(serviceName)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Upload.JobTopic)
	processingService := service.NewProcessingService(
		pubSub,
		cfg.Upload.JobTopic,
		uowFactory,
		docaiProvider,
		llmProvider,
		statusStore,
		wsHub,
		natsPub,
		m,
		serviceName,
	)

	authService := service.NewAuthService(uowFactory, cfg.Auth.TokenExpiry)
	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		statusStore,
		natsPub,
		cfg.Upload,
	)

	// Email notifications on terminal pipeline events
	notificationService := service.NewNotificationService(uowFactory, emailService)
	if natsSub != nil {
		if err := natsSub.Subscribe("events."+events.DocumentCompleted, "notifier-completed", notificationService.HandleDocumentCompleted); err != nil {
			log.Printf("[WARN] Failed to subscribe to %s: %v", events.DocumentCompleted, err)
		}
		if err := natsSub.Subscribe("events."+events.DocumentFailed, "notifier-failed", notificationService.HandleDocumentFailed); err != nil {
			log.Printf("[WARN] Failed to subscribe to %s: %v", events.DocumentFailed, err)
		}
	}

	// Handler
	statusHandler := handler.NewStatusHandler(wsHub, wsLogger, m)

	sysLogger.Info("Bootstrap", "Container initialized", map[string]interface{}{
		"llm_provider": cfg.Ai.LLMProvider,
		"redis":        redisUp,
	})

	// Health checks per dependency
	checks := map[string]controller.HealthChecker{
		"database": func(ctx context.Context) bool {
			sqlDB, err := db.DB()
			if err != nil {
				return false
			}
			return sqlDB.PingContext(ctx) == nil
		},
		"redis": func(ctx context.Context) bool {
			return rdb.Ping(ctx).Err() == nil
		},
		"document_intelligence": func(ctx context.Context) bool {
			return docaiProvider.HealthCheck(ctx)
		},
	}

	// 6. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		DocumentController: controller.NewDocumentController(documentService, m, serviceName),
		HealthController:   controller.NewHealthController("1.0.0", checks),

		ProcessingService: processingService,

		StatusHandler: statusHandler,
		WebSocketHub:  wsHub,

		Metrics: m,
	}
}
