package handlers

import (
	"context"
	"strings"

	"github.com/developia-II/marketplace-catalog/internal/models"
	"github.com/developia-II/marketplace-catalog/internal/services/catalog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mock Service ---

type MockService struct {
	Categories []models.Category
	Products   []models.Product
	Err        error // returned by every call when set
	WriteErr   error // returned by writes only

	LastQuery         string
	LastCategoryInput models.CategoryInput
	LastProductInput  models.ProductInput
	LastProductPatch  models.ProductPatch
	LastID            string
}

var _ catalog.Service = (*MockService)(nil)

func (m *MockService) ListCategories(context.Context) ([]models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Categories, nil
}

func (m *MockService) GetCategory(_ context.Context, id string) (models.Category, error) {
	if m.Err != nil {
		return models.Category{}, m.Err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Category{}, catalog.ErrInvalidID
	}
	for _, c := range m.Categories {
		if c.ID == oid {
			return c, nil
		}
	}
	return models.Category{}, catalog.ErrNotFound
}

func (m *MockService) CreateCategory(_ context.Context, input models.CategoryInput) (string, error) {
	m.LastCategoryInput = input
	if err := m.writeErr(); err != nil {
		return "", err
	}
	return primitive.NewObjectID().Hex(), nil
}

func (m *MockService) UpdateCategory(_ context.Context, id string, _ models.CategoryPatch) error {
	m.LastID = id
	return m.writeErr()
}

func (m *MockService) DeleteCategory(_ context.Context, id string) error {
	m.LastID = id
	return m.writeErr()
}

func (m *MockService) ListProducts(context.Context) ([]models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Products, nil
}

func (m *MockService) ListProductsByCategory(_ context.Context, categoryID string) ([]models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Product{}
	for _, p := range m.Products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockService) GetProduct(_ context.Context, id string) (models.Product, error) {
	if m.Err != nil {
		return models.Product{}, m.Err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, catalog.ErrInvalidID
	}
	for _, p := range m.Products {
		if p.ID == oid {
			return p, nil
		}
	}
	return models.Product{}, catalog.ErrNotFound
}

func (m *MockService) SearchProducts(_ context.Context, query string) ([]models.Product, error) {
	m.LastQuery = query
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Product{}
	for _, p := range m.Products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockService) FeaturedProducts(_ context.Context, n int) ([]models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Products) > n {
		return m.Products[:n], nil
	}
	return m.Products, nil
}

func (m *MockService) CreateProduct(_ context.Context, input models.ProductInput) (string, error) {
	m.LastProductInput = input
	if err := m.writeErr(); err != nil {
		return "", err
	}
	return primitive.NewObjectID().Hex(), nil
}

func (m *MockService) UpdateProduct(_ context.Context, id string, patch models.ProductPatch) error {
	m.LastID = id
	m.LastProductPatch = patch
	return m.writeErr()
}

func (m *MockService) DeleteProduct(_ context.Context, id string) error {
	m.LastID = id
	return m.writeErr()
}

func (m *MockService) writeErr() error {
	if m.Err != nil {
		return m.Err
	}
	return m.WriteErr
}
