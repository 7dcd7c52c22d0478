package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/adapters/repository"
	"github.com/developia-II/marketplace-catalog/internal/cache"
	"github.com/developia-II/marketplace-catalog/internal/events"
	"github.com/developia-II/marketplace-catalog/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mock Repositories ---

type MockCategoryRepo struct {
	Categories []models.Category
	Err        error
	Calls      int
}

func (m *MockCategoryRepo) ListCategories(context.Context) ([]models.Category, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Category{}, m.Categories...), nil
}

func (m *MockCategoryRepo) GetCategory(_ context.Context, id string) (models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Category{}, repository.ErrInvalidID
	}
	for _, c := range m.Categories {
		if c.ID == oid {
			return c, nil
		}
	}
	return models.Category{}, repository.ErrNotFound
}

func (m *MockCategoryRepo) CreateCategory(_ context.Context, c models.Category) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	c.ID = primitive.NewObjectID()
	m.Categories = append(m.Categories, c)
	return c.ID.Hex(), nil
}

func (m *MockCategoryRepo) UpdateCategory(_ context.Context, id string, patch models.CategoryPatch) error {
	if m.Err != nil {
		return m.Err
	}
	for i, c := range m.Categories {
		if c.ID.Hex() == id {
			if patch.Name != nil {
				m.Categories[i].Name = *patch.Name
			}
			if patch.Icon != nil {
				m.Categories[i].Icon = *patch.Icon
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockCategoryRepo) DeleteCategory(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	kept := m.Categories[:0]
	for _, c := range m.Categories {
		if c.ID.Hex() != id {
			kept = append(kept, c)
		}
	}
	m.Categories = kept
	return nil
}

type MockProductRepo struct {
	Products  []models.Product
	Err       error
	ListCalls int
	Writes    int
}

func (m *MockProductRepo) ListProducts(context.Context) ([]models.Product, error) {
	m.ListCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Product{}, m.Products...), nil
}

func (m *MockProductRepo) ListProductsByCategory(_ context.Context, categoryID string) ([]models.Product, error) {
	m.ListCalls++
	out := []models.Product{}
	for _, p := range m.Products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProductRepo) GetProduct(_ context.Context, id string) (models.Product, error) {
	for _, p := range m.Products {
		if p.ID.Hex() == id {
			return p, nil
		}
	}
	return models.Product{}, repository.ErrNotFound
}

func (m *MockProductRepo) CreateProduct(_ context.Context, p models.Product) (string, error) {
	m.Writes++
	if m.Err != nil {
		return "", m.Err
	}
	p.ID = primitive.NewObjectID()
	m.Products = append(m.Products, p)
	return p.ID.Hex(), nil
}

func (m *MockProductRepo) UpdateProduct(_ context.Context, id string, patch models.ProductPatch) error {
	m.Writes++
	for i, p := range m.Products {
		if p.ID.Hex() != id {
			continue
		}
		if patch.Name != nil {
			m.Products[i].Name = *patch.Name
		}
		if patch.Price != nil {
			m.Products[i].Price = patch.Price.InexactFloat64()
		}
		if patch.CategoryID != nil {
			m.Products[i].CategoryID = *patch.CategoryID
		}
		if patch.Company != nil {
			m.Products[i].Company = *patch.Company
		}
		if patch.Description != nil {
			m.Products[i].Description = *patch.Description
		}
		return nil
	}
	return repository.ErrNotFound
}

func (m *MockProductRepo) DeleteProduct(_ context.Context, id string) error {
	m.Writes++
	kept := m.Products[:0]
	for _, p := range m.Products {
		if p.ID.Hex() != id {
			kept = append(kept, p)
		}
	}
	m.Products = kept
	return nil
}

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

// --- Helpers ---

func ptr[T any](v T) *T { return &v }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seedCatalog() (*MockCategoryRepo, *MockProductRepo, models.Category) {
	hardware := models.Category{ID: primitive.NewObjectID(), Name: "Industrial Hardware"}
	textiles := models.Category{ID: primitive.NewObjectID(), Name: "Textiles"}
	categories := &MockCategoryRepo{Categories: []models.Category{hardware, textiles}}
	products := &MockProductRepo{Products: []models.Product{
		{ID: primitive.NewObjectID(), Name: "Steel Bolt", Company: "Acme", CategoryID: hardware.ID.Hex(), Price: 0.25},
		{ID: primitive.NewObjectID(), Name: "Cotton Fabric", Company: "Weave Co", CategoryID: textiles.ID.Hex(), Price: 4},
	}}
	return categories, products, hardware
}

// --- Tests: search ---

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()
	categories, products, _ := seedCatalog()
	svc := NewService(categories, products)

	all, err := svc.ListProducts(ctx)
	require.NoError(t, err)

	for _, q := range []string{"", "   "} {
		got, err := svc.SearchProducts(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, all, got, "blank query %q returns every product", q)
	}

	got, err := svc.SearchProducts(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Steel Bolt"}, productNames(got))

	got, err = svc.SearchProducts(ctx, "fabric")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cotton Fabric"}, productNames(got))

	got, err = svc.SearchProducts(ctx, "xyz")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSearchProductsIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	products := &MockProductRepo{Products: []models.Product{{ID: primitive.NewObjectID(), Name: "Widget"}}}
	svc := NewService(&MockCategoryRepo{}, products)

	upper, err := svc.SearchProducts(ctx, "WID")
	require.NoError(t, err)
	lower, err := svc.SearchProducts(ctx, "wid")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	assert.Len(t, upper, 1)
}

func TestSearchProductsSurfacesStoreError(t *testing.T) {
	products := &MockProductRepo{Err: errors.New("connection reset")}
	svc := NewService(&MockCategoryRepo{}, products)

	_, err := svc.SearchProducts(context.Background(), "bolt")
	assert.EqualError(t, err, "connection reset")
}

// --- Tests: categories ---

func TestCreateCategory(t *testing.T) {
	testCases := []struct {
		name        string
		input       models.CategoryInput
		repoErr     error
		expectedErr error
		check       func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:  "trims name and keeps icon",
			input: models.CategoryInput{Name: "  Electronics ", Icon: "monitor"},
			check: func(t *testing.T, repo *MockCategoryRepo) {
				require.Len(t, repo.Categories, 1)
				assert.Equal(t, "Electronics", repo.Categories[0].Name)
				assert.Equal(t, "monitor", repo.Categories[0].Icon)
				assert.False(t, repo.Categories[0].CreatedAt.IsZero())
			},
		},
		{
			name:        "blank name is rejected before the store",
			input:       models.CategoryInput{Name: "   "},
			expectedErr: ErrInvalidInput,
			check: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Empty(t, repo.Categories)
			},
		},
		{
			name:        "permission error is surfaced distinctly",
			input:       models.CategoryInput{Name: "Tools"},
			repoErr:     &repository.PermissionError{Collection: "categories", Err: errors.New("not authorized")},
			expectedErr: ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockCategoryRepo{Err: tc.repoErr}
			svc := NewService(repo, &MockProductRepo{})

			id, err := svc.CreateCategory(context.Background(), tc.input)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, id)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, id)
			}
			if tc.check != nil {
				tc.check(t, repo)
			}
		})
	}
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	categories, products, hardware := seedCatalog()
	svc := NewService(categories, products)

	err := svc.UpdateCategory(ctx, hardware.ID.Hex(), models.CategoryPatch{Name: ptr(" Hardware ")})
	require.NoError(t, err)
	got, err := svc.GetCategory(ctx, hardware.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Hardware", got.Name)

	err = svc.UpdateCategory(ctx, hardware.ID.Hex(), models.CategoryPatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateCategory(ctx, hardware.ID.Hex(), models.CategoryPatch{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteCategoryDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	categories, products, hardware := seedCatalog()
	svc := NewService(categories, products)

	require.NoError(t, svc.DeleteCategory(ctx, hardware.ID.Hex()))

	_, err := svc.GetCategory(ctx, hardware.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	orphans, err := svc.ListProductsByCategory(ctx, hardware.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"Steel Bolt"}, productNames(orphans))
	assert.Equal(t, 0, products.Writes)
}

// --- Tests: products ---

func TestCreateProduct(t *testing.T) {
	_, _, hardware := seedCatalog()
	valid := func() models.ProductInput {
		return models.ProductInput{
			Name:        "  Hex Nut ",
			Price:       price("1.50"),
			CategoryID:  hardware.ID.Hex(),
			Company:     " Acme ",
			SellerName:  "   ",
			SellerPhone: " +1 555 0100 ",
			Image:       " https://cdn.example.com/nut.png ",
			Description: " M8 zinc plated ",
		}
	}

	testCases := []struct {
		name        string
		mutate      func(in *models.ProductInput)
		expectedErr error
	}{
		{name: "valid input", mutate: func(*models.ProductInput) {}},
		{name: "free product", mutate: func(in *models.ProductInput) { in.Price = price("0") }},
		{name: "blank name", mutate: func(in *models.ProductInput) { in.Name = " " }, expectedErr: ErrInvalidInput},
		{name: "missing price", mutate: func(in *models.ProductInput) { in.Price = nil }, expectedErr: ErrInvalidInput},
		{name: "negative price", mutate: func(in *models.ProductInput) { in.Price = price("-0.01") }, expectedErr: ErrInvalidInput},
		{name: "missing category", mutate: func(in *models.ProductInput) { in.CategoryID = "" }, expectedErr: ErrInvalidInput},
		{name: "unknown category", mutate: func(in *models.ProductInput) { in.CategoryID = primitive.NewObjectID().Hex() }, expectedErr: ErrInvalidInput},
		{name: "malformed category id", mutate: func(in *models.ProductInput) { in.CategoryID = "not-an-id" }, expectedErr: ErrInvalidInput},
		{name: "bad image url", mutate: func(in *models.ProductInput) { in.Image = "not a url" }, expectedErr: ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			categories := &MockCategoryRepo{Categories: []models.Category{hardware}}
			products := &MockProductRepo{}
			svc := NewService(categories, products)
			in := valid()
			tc.mutate(&in)

			_, err := svc.CreateProduct(context.Background(), in)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, 0, products.Writes, "store must not be called")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, products.Writes)
		})
	}
}

func TestCreateProductThenListKeepsTrimmedFields(t *testing.T) {
	ctx := context.Background()
	categories, products, hardware := seedCatalog()
	svc := NewService(categories, products)

	id, err := svc.CreateProduct(ctx, models.ProductInput{
		Name:        "  Hex Nut ",
		Price:       price("1.50"),
		CategoryID:  hardware.ID.Hex(),
		Company:     " Acme ",
		SellerName:  "   ",
		SellerPhone: " +1 555 0100 ",
		Image:       " https://cdn.example.com/nut.png ",
		Description: " M8 zinc plated ",
	})
	require.NoError(t, err)

	all, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	created := all[2]
	assert.Equal(t, id, created.ID.Hex())
	assert.Equal(t, "Hex Nut", created.Name)
	assert.Equal(t, 1.5, created.Price)
	assert.Equal(t, hardware.ID.Hex(), created.CategoryID)
	assert.Equal(t, "Acme", created.Company)
	assert.Equal(t, "", created.SellerName)
	assert.Equal(t, "+1 555 0100", created.SellerPhone)
	assert.Equal(t, "https://cdn.example.com/nut.png", created.Image)
	assert.Equal(t, "M8 zinc plated", created.Description)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	categories, products, _ := seedCatalog()
	svc := NewService(categories, products)
	bolt := products.Products[0]

	testCases := []struct {
		name        string
		patch       models.ProductPatch
		expectedErr error
	}{
		{name: "rename", patch: models.ProductPatch{Name: ptr(" Zinc Bolt ")}},
		{name: "reprice", patch: models.ProductPatch{Price: price("0.30")}},
		{name: "clear company", patch: models.ProductPatch{Company: ptr("  ")}},
		{name: "empty patch", patch: models.ProductPatch{}, expectedErr: ErrInvalidInput},
		{name: "blank name", patch: models.ProductPatch{Name: ptr("")}, expectedErr: ErrInvalidInput},
		{name: "negative price", patch: models.ProductPatch{Price: price("-1")}, expectedErr: ErrInvalidInput},
		{name: "unknown category", patch: models.ProductPatch{CategoryID: ptr(primitive.NewObjectID().Hex())}, expectedErr: ErrInvalidInput},
		{name: "bad image", patch: models.ProductPatch{Image: ptr("nope")}, expectedErr: ErrInvalidInput},
		{name: "missing product", patch: models.ProductPatch{Name: ptr("x")}, expectedErr: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := bolt.ID.Hex()
			if tc.name == "missing product" {
				id = primitive.NewObjectID().Hex()
			}
			err := svc.UpdateProduct(ctx, id, tc.patch)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	got, err := svc.GetProduct(ctx, bolt.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Zinc Bolt", got.Name)
	assert.Equal(t, 0.3, got.Price)
	assert.Equal(t, "", got.Company)
}

func TestUpdateProductDoesNotModifyCallerPatch(t *testing.T) {
	categories, products, _ := seedCatalog()
	svc := NewService(categories, products)

	name := "  Padded  "
	patch := models.ProductPatch{Name: &name}
	require.NoError(t, svc.UpdateProduct(context.Background(), products.Products[0].ID.Hex(), patch))
	assert.Equal(t, "  Padded  ", name)
}

func TestFeaturedProducts(t *testing.T) {
	products := &MockProductRepo{}
	for i := 0; i < 6; i++ {
		products.Products = append(products.Products, models.Product{ID: primitive.NewObjectID(), Name: fmt.Sprintf("P%d", i)})
	}
	svc := NewService(&MockCategoryRepo{}, products)

	got, err := svc.FeaturedProducts(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"P0", "P1", "P2", "P3"}, productNames(got))

	products.Products = products.Products[:2]
	svc = NewService(&MockCategoryRepo{}, products)
	got, err = svc.FeaturedProducts(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// --- Tests: invalidate-on-mutation ---

func TestWritesInvalidateCachedQueries(t *testing.T) {
	ctx := context.Background()
	categories, products, hardware := seedCatalog()
	store := cache.NewMemory()
	pub := &recordingPublisher{}
	svc := NewService(categories, products, WithCache(store, time.Minute), WithEvents(pub))

	_, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	_, err = svc.SearchProducts(ctx, "bolt")
	require.NoError(t, err)
	_, err = svc.ListProductsByCategory(ctx, hardware.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, products.ListCalls, "search filters the cached product list")

	// Served from cache.
	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	_, err = svc.SearchProducts(ctx, "bolt")
	require.NoError(t, err)
	assert.Equal(t, 2, products.ListCalls)

	id, err := svc.CreateProduct(ctx, models.ProductInput{Name: "Bolt Cutter", Price: price("20"), CategoryID: hardware.ID.Hex()})
	require.NoError(t, err)

	found, err := svc.SearchProducts(ctx, "bolt")
	require.NoError(t, err)
	assert.Equal(t, []string{"Steel Bolt", "Bolt Cutter"}, productNames(found))
	byCategory, err := svc.ListProductsByCategory(ctx, hardware.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)
	assert.Equal(t, 4, products.ListCalls)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ProductCreated, pub.events[0].Type)
	assert.Equal(t, id, pub.events[0].DocumentID)

	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, products.ListCalls)

	// Category writes only touch the category keys.
	_, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, models.CategoryInput{Name: "Electronics"})
	require.NoError(t, err)
	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 2, categories.Calls)

	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, products.ListCalls)
}

func TestFailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	categories := &MockCategoryRepo{}
	store := cache.NewMemory()
	pub := &recordingPublisher{}
	svc := NewService(categories, &MockProductRepo{}, WithCache(store, time.Minute), WithEvents(pub))

	_, err := svc.ListCategories(ctx)
	require.NoError(t, err)

	categories.Err = errors.New("write conflict")
	_, err = svc.CreateCategory(ctx, models.CategoryInput{Name: "Tools"})
	require.Error(t, err)

	_, ok, _ := store.Get(ctx, cache.KeyCategories)
	assert.True(t, ok)
	assert.Empty(t, pub.events)
}

// blockingProductRepo holds the first ListProducts call after it has read the
// store, until release is closed.
type blockingProductRepo struct {
	*MockProductRepo
	block   bool
	loaded  chan struct{}
	release chan struct{}
}

func (b *blockingProductRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := b.MockProductRepo.ListProducts(ctx)
	if b.block {
		b.block = false
		close(b.loaded)
		<-b.release
	}
	return products, err
}

func TestReadOverlappingWriteDoesNotCacheOldList(t *testing.T) {
	ctx := context.Background()
	categories, mock, hardware := seedCatalog()
	products := &blockingProductRepo{
		MockProductRepo: mock,
		block:           true,
		loaded:          make(chan struct{}),
		release:         make(chan struct{}),
	}
	svc := NewService(categories, products, WithCache(cache.NewMemory(), time.Minute))

	done := make(chan []models.Product)
	go func() {
		list, err := svc.ListProducts(ctx)
		assert.NoError(t, err)
		done <- list
	}()

	<-products.loaded
	_, err := svc.CreateProduct(ctx, models.ProductInput{Name: "Bolt Cutter", Price: price("20"), CategoryID: hardware.ID.Hex()})
	require.NoError(t, err)
	close(products.release)

	stale := <-done
	assert.Len(t, stale, 2)

	got, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Bolt Cutter", got[2].Name)
}
