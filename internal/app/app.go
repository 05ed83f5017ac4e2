package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skyjet/reconciliation-service/config"
	"github.com/skyjet/reconciliation-service/internal/alerts"
	"github.com/skyjet/reconciliation-service/internal/applier"
	"github.com/skyjet/reconciliation-service/internal/database"
	"github.com/skyjet/reconciliation-service/internal/gateway"
	"github.com/skyjet/reconciliation-service/internal/handlers"
	"github.com/skyjet/reconciliation-service/internal/ingest"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/normalizer"
	"github.com/skyjet/reconciliation-service/internal/publisher"
	"github.com/skyjet/reconciliation-service/internal/refund"
	"github.com/skyjet/reconciliation-service/internal/repository/posgrest"
	"github.com/skyjet/reconciliation-service/internal/retry"
	"github.com/skyjet/reconciliation-service/internal/verifier"
)

type App struct {
	config *config.Config
	Router *gin.Engine
}

func (a *App) Initialize(cfg *config.Config) {
	a.config = cfg
	db, err := cfg.DB.GormConnect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.InboundEvent{},
		&models.ProcessedEvent{},
		&models.RetryTicket{},
		&models.DeadLetterRecord{},
		&models.Booking{},
		&models.Payment{},
		&models.RefundRequest{},
		&models.RefundActionLog{},
		&models.RefundPolicy{},
		&models.DeliveryLog{},
		&models.Subscription{},
		&models.Alert{},
	); err != nil {
		log.Fatalf("failed to auto migrate: %v", err)
	}

	if err := database.SeedRefundPolicies(db); err != nil {
		log.Fatalf("failed to seed refund policies: %v", err)
	}

	eventRepo := posgrest.New[models.InboundEvent](db)
	deadLetterRepo := posgrest.New[models.DeadLetterRecord](db)
	ticketRepo := posgrest.NewRetryTicketRepository(db)
	processedRepo := posgrest.NewProcessedEventRepository(db)
	bookingRepo := posgrest.NewBookingRepository(db)
	paymentRepo := posgrest.NewPaymentRepository(db)
	refundRepo := posgrest.NewRefundRepository(db)
	deliveryRepo := posgrest.NewDeliveryLogRepository(db)
	subscriptionRepo := posgrest.NewSubscriptionRepository(db)
	alertRepo := posgrest.NewAlertRepository(db)

	publishTopics := strings.Split(cfg.Kafka.PublishTopics, ",")
	kafkaPublisher := publisher.NewKafkaPublisher(cfg.Kafka.Brokers, publishTopics, cfg.Kafka.GetRetryConfig())

	alertService := alerts.NewAlertService(alertRepo, kafkaPublisher)
	eventApplier := applier.New(bookingRepo, paymentRepo, refundRepo, deliveryRepo, subscriptionRepo, processedRepo, alertService, kafkaPublisher)
	eventNormalizer := normalizer.New()
	scheduler := retry.NewScheduler(ticketRepo, eventRepo, eventNormalizer, eventApplier, alertService, cfg.Retry.MaxRetries)
	ingestService := ingest.NewIngestService(verifier.New(cfg.Providers), eventNormalizer, eventApplier, scheduler, eventRepo)
	refundService := refund.NewRefundService(refundRepo, paymentRepo, bookingRepo, gateway.NewSelector(cfg.Gateway), alertService, kafkaPublisher, cfg.Refund.ProcessingFeePercentage)

	webhookHandler := handlers.NewWebhookHandler(ingestService)
	refundHandler := handlers.NewRefundHandler(refundService)
	alertHandler := handlers.NewAlertHandler(alertService)
	eventHandler := handlers.NewEventHandler(eventRepo, deadLetterRepo)

	a.Router = gin.Default()
	a.Router.Use(gin.Recovery())
	a.RegisterRoutes(webhookHandler, refundHandler, alertHandler, eventHandler)

	go scheduler.Run(context.Background(), cfg.Retry.SweepInterval)
}

func (a *App) Run() {
	err := a.Router.Run(fmt.Sprintf(":%s", a.config.APP.PORT))
	if err != nil {
		panic(err)
	}
}
