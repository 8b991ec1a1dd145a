package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/salestrack/messenger-service/config"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// seed inserts a demo user with one product-of-interest subscription so
// a local price-update can be exercised end to end.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@salestrack.com.br"
	password := "password123"
	cpf := "12345678901"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, email, password_hash, cpf, role, fcm_reg_id,
			sales_provider_user_id, enabled, last_update)
		VALUES ($1, $2, $3, $4, 'USER', 'demo-token', 42, TRUE, now())
		ON CONFLICT (email) DO UPDATE SET last_update = now()
		RETURNING id
	`, uuid.NewString(), email, hash, cpf).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s cpf=%s password=%s\n", id, email, cpf, password)

	var poiID string
	err = db.QueryRow(`
		INSERT INTO products_of_interest (id, cpf, sales_provider_user_id,
			sales_provider_product_id, min_price_alert)
		VALUES ($1, $2, 42, 1001, 150.00)
		ON CONFLICT (cpf, sales_provider_product_id) DO UPDATE SET min_price_alert = EXCLUDED.min_price_alert
		RETURNING id
	`, uuid.NewString(), cpf).Scan(&poiID)
	if err != nil {
		log.Fatalf("failed to seed product of interest: %v", err)
	}
	fmt.Printf("seeded product of interest: id=%s product=1001 minPriceAlert=150.00\n", poiID)
}
