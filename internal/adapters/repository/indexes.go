package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the catalog queries rely on. Creating an
// index that already exists is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	products := db.Collection(ProductsCollection)

	// Category page filters on categoryId.
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "categoryId", Value: 1}},
			Options: options.Index().SetName("idx_categoryId"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_createdAt"),
		},
	}
	names, err := products.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("create product indexes: %w", translate(ProductsCollection, err))
	}
	logrus.WithField("indexes", names).Info("Product indexes ready")
	return nil
}
