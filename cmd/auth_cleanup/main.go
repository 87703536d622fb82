package main

import (
	"context"
	"log"
	"os"
	"time"

	"civicauth/internal/database"
	"civicauth/internal/repository"
)

// One-shot sweep of the access-token blacklist, for cron or manual use.
// The API server runs the same sweep on an interval; this binary exists for
// deployments that prefer external scheduling.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	tokenRepo := repository.NewRevokedTokenRepository(db)

	deleted, err := tokenRepo.DeleteExpired(context.Background(), time.Now())
	if err != nil {
		log.Fatalf("cleanup jwt_blacklist failed: %v", err)
	}

	log.Printf("auth cleanup completed: jwt_blacklist=%d", deleted)
}
