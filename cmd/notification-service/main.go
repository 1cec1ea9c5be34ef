package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/restaurant-ecommerce/notification-service/internal/channels/email"
	"github.com/restaurant-ecommerce/notification-service/internal/channels/mobile"
	"github.com/restaurant-ecommerce/notification-service/internal/channels/push"
	"github.com/restaurant-ecommerce/notification-service/internal/config"
	"github.com/restaurant-ecommerce/notification-service/internal/directory"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
	"github.com/restaurant-ecommerce/notification-service/internal/formatter"
	"github.com/restaurant-ecommerce/notification-service/internal/handlers"
	"github.com/restaurant-ecommerce/notification-service/internal/pkg/logger"
	"github.com/restaurant-ecommerce/notification-service/internal/repository"
	"github.com/restaurant-ecommerce/notification-service/internal/service"
	sharedHTTP "github.com/restaurant-ecommerce/notification-service/shared-domain/http"
	"github.com/restaurant-ecommerce/notification-service/shared-domain/messaging"
)

func main() {
	log.Println("🚀 Starting Notification Service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logger.Init(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := service.Dependencies{
		Email:     newEmailAdapter(cfg.SMTP),
		Mobile:    newMobileAdapter(cfg.Twilio),
		Push:      push.NewAdapter(cfg.Push.Server, cfg.Push.Token, nil),
		Directory: directory.New(cfg.Recipients, cfg.Push),
		Formatter: formatter.New(formatter.Settings{
			CurrencySymbol: cfg.Presentation.CurrencySymbol,
			Location:       cfg.Presentation.Location(),
			RestaurantName: cfg.Presentation.RestaurantName,
			CollectionSite: cfg.Presentation.CollectionSite,
		}),
		Metrics: service.NewMetrics(registry),
		Rules: domain.OrderRules{
			DefaultDeliveryFee: domain.Money(cfg.Presentation.DefaultDeliveryFee),
		},
		ChannelTimeout: cfg.Dispatch.ChannelTimeout,
		ServiceName:    cfg.ServiceName,
	}

	if cfg.Database.URL != "" {
		db, err := initDatabase(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Database connection error: %v", err)
		}
		defer db.Close()
		deps.Ledger = repository.NewDeliveryRepository(db)
	} else {
		log.Println("📒 DATABASE_URL not set, keeping delivery history in memory")
		deps.Ledger = repository.NewMemoryLedger(200)
	}

	if cfg.Redis.URL != "" {
		client, err := initRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Redis connection error: %v", err)
		}
		defer client.Close()
		deps.Idempotency = repository.NewRedisIdempotencyStore(client, cfg.Dispatch.IdempotencyTTL)
	} else {
		deps.Idempotency = repository.NewMemoryIdempotencyStore(cfg.Dispatch.IdempotencyTTL)
	}

	var rabbitClient *messaging.RabbitMQClient
	if cfg.RabbitMQ.Enabled() {
		rabbitClient = messaging.NewRabbitMQClient(messaging.NewRabbitMQConfig(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange))
		if err := rabbitClient.Connect(); err != nil {
			log.Fatalf("RabbitMQ connection error: %v", err)
		}
		defer rabbitClient.Close()
		deps.Publisher = messaging.NewPublisher(rabbitClient)
	}

	notificationService := service.NewNotificationService(deps)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	if rabbitClient != nil {
		consumer := messaging.NewConsumer(rabbitClient, cfg.RabbitMQ.Queue, cfg.ServiceName)
		eventHandler := handlers.NewEventHandler(notificationService)
		log.Println("🐰 Starting RabbitMQ event consumption...")
		if err := eventHandler.StartConsuming(ctx, consumer); err != nil {
			log.Printf("RabbitMQ consumption error: %v", err)
		}
	}

	app := setupFiberApp(registry)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	handlers.SetupRoutes(app, notificationHandler)

	go func() {
		<-ctx.Done()

		log.Println("🛑 Shutting down Notification Service...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	caps := notificationService.Capabilities()
	log.Printf("🌍 Notification Service running on: http://localhost:%s", cfg.Port)
	log.Printf("📣 Channels - email: %t, sms: %t, whatsapp: %t, push: %t",
		caps.Channels["email"], caps.Channels["sms"], caps.Channels["whatsapp"], caps.Channels["push"])

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server startup error: %v", err)
	}
}

func newEmailAdapter(cfg config.SMTP) *email.Adapter {
	if !cfg.Enabled() {
		log.Println("📧 SMTP not configured, email channel disabled")
		return email.NewAdapter(nil, "")
	}
	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	return email.NewAdapter(mailer, cfg.From)
}

func newMobileAdapter(cfg config.Twilio) *mobile.Adapter {
	if !cfg.Enabled() {
		log.Println("📱 Twilio not configured, SMS and WhatsApp channels disabled")
		return mobile.NewAdapter(nil, mobile.Config{})
	}
	gateway := mobile.NewTwilioGateway(cfg.AccountSID, cfg.AuthToken)
	return mobile.NewAdapter(gateway, mobile.Config{
		SMSFrom:      cfg.SMSFrom,
		WhatsAppFrom: cfg.WhatsAppFrom,
	})
}

func initDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("database open error: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping error: %w", err)
	}

	if err := repository.NewDeliveryRepository(db).EnsureSchema(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("✅ Database connection successful")
	return db, nil
}

func initRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}

	log.Println("✅ Redis connection successful")
	return client, nil
}

func setupFiberApp(registry prometheus.Registerer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Notification Service v1.0",
		ErrorHandler: sharedHTTP.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
		Output: os.Stdout,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))
	app.Use(handlers.MetricsMiddleware(registry))

	return app
}
