package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/salestrack/messenger-service/config"
	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// simulate publishes one price-update event to the worker queue.
func main() {
	productID := flag.Int64("product", 1001, "sales provider product id")
	price := flag.Float64("price", 99.90, "new product price")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQPriceQueue)
	if err != nil {
		log.Fatalf("rabbitmq connect: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := entity.PriceUpdate{ProductID: *productID, NewProductPrice: *price}
	if err := pub.PublishJSON(ctx, ev); err != nil {
		log.Fatalf("publish: %v", err)
	}
	log.Printf("published price update: product=%d price=%.2f queue=%q", ev.ProductID, ev.NewProductPrice, cfg.RabbitMQPriceQueue)
}
