package repository

import (
	"context"

	"github.com/developia-II/marketplace-catalog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CategoriesCollection = "categories"

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (string, error)
	UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) error
	DeleteCategory(ctx context.Context, id string) error
}

type MongoCategoryRepository struct {
	DB *mongo.Database
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &MongoCategoryRepository{DB: db}
}

// ListCategories returns every category in the store's natural order.
func (r *MongoCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	collection := r.DB.Collection(CategoriesCollection)
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(CategoriesCollection, err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, translate(CategoriesCollection, err)
	}
	return categories, nil
}

func (r *MongoCategoryRepository) GetCategory(ctx context.Context, id string) (models.Category, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Category{}, ErrInvalidID
	}
	var category models.Category
	err = r.DB.Collection(CategoriesCollection).FindOne(ctx, bson.M{"_id": objID}).Decode(&category)
	if err != nil {
		return models.Category{}, translate(CategoriesCollection, err)
	}
	return category, nil
}

func (r *MongoCategoryRepository) CreateCategory(ctx context.Context, category models.Category) (string, error) {
	res, err := r.DB.Collection(CategoriesCollection).InsertOne(ctx, category)
	if err != nil {
		return "", translate(CategoriesCollection, err)
	}
	return insertedID(res), nil
}

func (r *MongoCategoryRepository) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	update := categoryUpdate(patch)
	if len(update) == 0 {
		return nil
	}
	result, err := r.DB.Collection(CategoriesCollection).UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return translate(CategoriesCollection, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes the category without checking it exists first.
// Products that reference it are left as they are.
func (r *MongoCategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	_, err = r.DB.Collection(CategoriesCollection).DeleteOne(ctx, bson.M{"_id": objID})
	return translate(CategoriesCollection, err)
}

func categoryUpdate(patch models.CategoryPatch) bson.M {
	set, unset := bson.M{}, bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	assignOptional(set, unset, "icon", patch.Icon)
	return updateDocument(set, unset)
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

// assignOptional routes an optional text field of a patch: nil is skipped,
// "" removes the field, anything else overwrites it.
func assignOptional(set, unset bson.M, key string, value *string) {
	if value == nil {
		return
	}
	if *value == "" {
		unset[key] = ""
		return
	}
	set[key] = *value
}

func updateDocument(set, unset bson.M) bson.M {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
