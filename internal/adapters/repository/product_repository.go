package repository

import (
	"context"

	"github.com/developia-II/marketplace-catalog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const ProductsCollection = "products"

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, product models.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
}

type MongoProductRepository struct {
	DB *mongo.Database
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{DB: db}
}

func (r *MongoProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProductRepository) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	return r.find(ctx, bson.M{"categoryId": categoryID})
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	collection := r.DB.Collection(ProductsCollection)
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, translate(ProductsCollection, err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, translate(ProductsCollection, err)
	}
	return products, nil
}

func (r *MongoProductRepository) GetProduct(ctx context.Context, id string) (models.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, ErrInvalidID
	}
	var product models.Product
	if err := r.DB.Collection(ProductsCollection).FindOne(ctx, bson.M{"_id": objID}).Decode(&product); err != nil {
		return models.Product{}, translate(ProductsCollection, err)
	}
	return product, nil
}

func (r *MongoProductRepository) CreateProduct(ctx context.Context, product models.Product) (string, error) {
	res, err := r.DB.Collection(ProductsCollection).InsertOne(ctx, product)
	if err != nil {
		return "", translate(ProductsCollection, err)
	}
	return insertedID(res), nil
}

func (r *MongoProductRepository) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := productUpdate(patch)
	if len(update) == 0 {
		return nil
	}
	result, err := r.DB.Collection(ProductsCollection).UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return translate(ProductsCollection, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) DeleteProduct(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	_, err = r.DB.Collection(ProductsCollection).DeleteOne(ctx, bson.M{"_id": objID})
	return translate(ProductsCollection, err)
}

func productUpdate(patch models.ProductPatch) bson.M {
	set, unset := bson.M{}, bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		set["price"] = patch.Price.InexactFloat64()
	}
	if patch.CategoryID != nil {
		set["categoryId"] = *patch.CategoryID
	}
	assignOptional(set, unset, "company", patch.Company)
	assignOptional(set, unset, "sellerName", patch.SellerName)
	assignOptional(set, unset, "sellerPhone", patch.SellerPhone)
	assignOptional(set, unset, "image", patch.Image)
	assignOptional(set, unset, "description", patch.Description)

	return updateDocument(set, unset)
}
