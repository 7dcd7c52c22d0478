package main

import (
	"context"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/adapters/repository"
	"github.com/developia-II/marketplace-catalog/internal/config"
	"github.com/developia-II/marketplace-catalog/internal/database"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Run this script once to create database indexes
// Usage: go run scripts/create_indexes.go
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	// Atlas is slower than localhost
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v\nCheck your connection string and network access", err)
	}
	defer client.Disconnect(context.Background())

	if err := repository.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
		logrus.Fatalf("Failed to create indexes: %v", err)
	}
	logrus.Info("Run 'db.products.getIndexes()' in the MongoDB shell to verify")
}
