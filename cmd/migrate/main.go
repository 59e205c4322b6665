package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-reservations/internal/models"
)

// Standalone schema bootstrap: drops and recreates the tables, then seeds a
// couple of events for local development.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set")
	}

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()

	log.Println("Dropping tables...")
	_ = dropTables(ctx, db)

	log.Println("Creating tables...")
	createTables(ctx, db)

	if os.Getenv("SEED_DATA") == "true" {
		log.Println("Seeding sample data...")
		_ = seedData(ctx, db)
	}

	log.Println("Done.")
}

func dropTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{(*models.Reservation)(nil), (*models.AccessToken)(nil), (*models.Event)(nil), (*models.User)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
	return nil
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.User)(nil), (*models.AccessToken)(nil), (*models.Event)(nil), (*models.Reservation)(nil)}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) error {
	events := []models.Event{
		{
			Name:        "Summer Fest 2026",
			Date:        "2026-07-18",
			Location:    "Riverside Park",
			Description: "Annual summer music festival.",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		},
		{
			Name:        "Go Meetup",
			Date:        "2026-09-02",
			Location:    "Downtown Hub",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		},
	}
	_, err := db.NewInsert().Model(&events).Exec(ctx)
	return err
}
