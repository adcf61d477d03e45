package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedCoupons(db)

	log.Println("Seeding completed successfully!")
}

func seedCoupons(db *sql.DB) {
	log.Println("Seeding coupons...")

	_, err := db.Exec(`
		INSERT INTO coupons (id, kind, discount, threshold)
		VALUES ($1, 'cart-wise', 10, 250)
	`, uuid.NewString())
	if err != nil {
		log.Fatalf("Failed to seed cart-wise coupon: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO coupons (id, kind, discount, product_id)
		VALUES ($1, 'product-wise', 20, 1)
	`, uuid.NewString())
	if err != nil {
		log.Fatalf("Failed to seed product-wise coupon: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO coupons (id, kind, discount, buy_products, get_products, repetition_limit)
		VALUES ($1, 'bxgy', 0,
			'[{"product_id": 1, "quantity": 3}, {"product_id": 2, "quantity": 3}]'::jsonb,
			'[{"product_id": 3, "quantity": 1}]'::jsonb,
			2)
	`, uuid.NewString())
	if err != nil {
		log.Fatalf("Failed to seed bxgy coupon: %v", err)
	}
}
