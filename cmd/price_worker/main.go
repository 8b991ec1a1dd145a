package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/salestrack/messenger-service/config"
	"github.com/salestrack/messenger-service/internal/application"
	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/infrastructure/fcm"
	pginfra "github.com/salestrack/messenger-service/internal/infrastructure/postgres"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// price_worker consumes price-update events from RabbitMQ and feeds them
// to the same notifier the HTTP surface uses. "No interested products"
// is a normal outcome for a queued event, not a failure.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-price-worker", cfg.Env)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQPriceQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	sender, err := fcm.NewClient(ctx, cfg.FCMCredentialsJSONPath)
	if err != nil {
		log.Fatalf("failed to init FCM client: %v", err)
	}

	notifier := application.NewNotifierService(
		pginfra.NewUserRepository(pool),
		pginfra.NewProductOfInterestRepository(pool),
		sender,
		logger,
	)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQPriceQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQPriceQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev entity.PriceUpdate
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				logger.WithError(err).Warn("bad price update message")
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 30*time.Second)
			agg, err := notifier.PriceUpdate(c, &ev)
			cancel()

			var noMatch *application.ErrNoInterestedProducts
			switch {
			case err == nil:
				logger.WithField("productId", ev.ProductID).Info("price update dispatched")
				logger.Debug(agg)
				_ = msg.Ack(false)
			case errors.As(err, &noMatch):
				logger.WithField("productId", ev.ProductID).Info("no interested products")
				_ = msg.Ack(false)
			case entity.IsValidation(err):
				logger.WithError(err).Warn("invalid price update event")
				_ = msg.Nack(false, false)
			default:
				logger.WithError(err).Error("price update dispatch failed")
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	log.Printf("price worker consuming %q", cfg.RabbitMQPriceQueue)
	select {
	case <-stop:
		log.Println("shutting down price worker")
	case <-done:
		log.Println("consume channel closed")
	}
}
