package bootstrap

import (
	"context"
	"log"

	"visionvoice-be/internal/config"
	"visionvoice-be/internal/controller"
	"visionvoice-be/internal/pkg/logger"
	"visionvoice-be/internal/pkg/mailer"
	"visionvoice-be/internal/pkg/serverutils"
	"visionvoice-be/internal/repository/contract"
	"visionvoice-be/internal/repository/implementation"
	"visionvoice-be/internal/repository/memory"
	"visionvoice-be/internal/repository/redisrepo"
	"visionvoice-be/internal/service"
	"visionvoice-be/pkg/ocr"
	"visionvoice-be/pkg/pdfgen"
	"visionvoice-be/pkg/speech"
	"visionvoice-be/pkg/storage"
	"visionvoice-be/pkg/summarize"
	"visionvoice-be/pkg/translate"

	pktNats "visionvoice-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const processedTopic = "document.processed"

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	PlanController     controller.IPlanController
	WorkflowController controller.IWorkflowController
	PaymentController  controller.IPaymentController

	// Request middleware shared by route registration
	SessionMiddleware fiber.Handler

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 2.5 Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// Session storage: Redis when configured, in-process otherwise
	var sessionRepo contract.SessionRepository
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sessions", err)
			sessionRepo = memory.NewSessionRepository()
		} else {
			sessionRepo = redisrepo.NewSessionRepository(rdb)
		}
	} else {
		sessionRepo = memory.NewSessionRepository()
	}

	// 3. Cloud collaborators
	objectStore, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object store: %v", err)
	}
	extractor, err := ocr.NewVisionExtractor(ctx)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize OCR client: %v", err)
	}
	translator, err := translate.NewGoogleTranslator(ctx)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize translation client: %v", err)
	}
	synthesizer, err := speech.NewGoogleSynthesizer(ctx, cfg.Ai.SpeechLanguage, cfg.Ai.SpeechVoice)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize speech client: %v", err)
	}
	summarizer := summarize.NewOpenAISummarizer(cfg.Ai.OpenAIKey, cfg.Ai.SummaryModel)
	renderer := pdfgen.NewFpdfRenderer()

	// 4. Repositories
	userRepo := implementation.NewUserRepository(db)
	paymentRepo := implementation.NewPaymentRepository(db)

	// 5. Services
	publisherService := service.NewPublisherService(processedTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, processedTopic, natsPub, sysLogger)

	tierService, err := service.NewTierService(cfg.Tiers.ConfigPath, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load tier table: %v", err)
	}

	oauthService, err := service.NewOAuthService(cfg.Provider, cfg.App.ClientURL, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize OAuth service: %v", err)
	}

	sessionService := service.NewSessionService(sessionRepo, cfg.App.JWTSecret, cfg.App.DevMode)
	userService := service.NewUserService(userRepo, tierService, emailService, sysLogger)

	workflowService := service.NewWorkflowService(
		tierService,
		sessionRepo,
		objectStore,
		extractor,
		summarizer,
		translator,
		synthesizer,
		renderer,
		publisherService,
		sysLogger,
	)

	paymentService := service.NewPaymentService(
		paymentRepo,
		userRepo,
		tierService,
		cfg.Payment.MidtransServerKey,
		cfg.Payment.MidtransEnv,
		cfg.App.ClientURL,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(oauthService, sessionService, userService),
		PlanController:     controller.NewPlanController(tierService, userService, sessionService, workflowService),
		WorkflowController: controller.NewWorkflowController(workflowService, sessionService),
		PaymentController:  controller.NewPaymentController(paymentService),

		SessionMiddleware: serverutils.SessionMiddleware(cfg.App.JWTSecret, sessionRepo),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
