package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/adapters/repository"
	"github.com/developia-II/marketplace-catalog/internal/cache"
	"github.com/developia-II/marketplace-catalog/internal/events"
	"github.com/developia-II/marketplace-catalog/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Service is the catalog query layer the storefront and dashboard handlers
// talk to. Store errors are returned unchanged; input errors wrap
// ErrInvalidInput and never reach the store.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
	CreateCategory(ctx context.Context, input models.CategoryInput) (string, error)
	UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) error
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	FeaturedProducts(ctx context.Context, n int) ([]models.Product, error)
	CreateProduct(ctx context.Context, input models.ProductInput) (string, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
}

type Option func(*service)

// WithCache serves reads from store and drops a collection's keys after
// every write to it.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = store
		s.ttl = ttl
	}
}

func WithEvents(p events.Publisher) Option {
	return func(s *service) { s.events = p }
}

type service struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      cache.Store
	ttl        time.Duration
	events     events.Publisher
	v          *validator.Validate
	log        *logrus.Entry
	now        func() time.Time

	// gens counts writes per collection so a read that raced a write does
	// not store what it loaded before the write.
	genMu sync.Mutex
	gens  map[string]uint64
}

func NewService(categories repository.CategoryRepository, products repository.ProductRepository, opts ...Option) Service {
	s := &service{
		categories: categories,
		products:   products,
		cache:      cache.Nop{},
		events:     events.Discard{},
		v:          newValidator(),
		log:        logrus.WithField("component", "catalog"),
		now:        time.Now,
		gens:       make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

/* ------------------ Categories ------------------ */

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s, cache.KeyCategories, s.categories.ListCategories)
}

func (s *service) GetCategory(ctx context.Context, id string) (models.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

func (s *service) CreateCategory(ctx context.Context, input models.CategoryInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Icon = strings.TrimSpace(input.Icon)
	if err := s.v.Struct(input); err != nil {
		return "", invalid(err)
	}

	id, err := s.categories.CreateCategory(ctx, models.Category{
		Name:      input.Name,
		Icon:      input.Icon,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", err
	}
	s.written(ctx, cache.KeyCategories, events.CategoryCreated, repository.CategoriesCollection, id)
	return id, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) error {
	patch.Name = trimmed(patch.Name)
	patch.Icon = trimmed(patch.Icon)
	if patch.Name == nil && patch.Icon == nil {
		return invalidf("nothing to update")
	}
	if err := s.v.Struct(patch); err != nil {
		return invalid(err)
	}

	if err := s.categories.UpdateCategory(ctx, id, patch); err != nil {
		return err
	}
	s.written(ctx, cache.KeyCategories, events.CategoryUpdated, repository.CategoriesCollection, id)
	return nil
}

// DeleteCategory leaves products that reference the category untouched.
func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.written(ctx, cache.KeyCategories, events.CategoryDeleted, repository.CategoriesCollection, id)
	return nil
}

/* ------------------ Products ------------------ */

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return cached(ctx, s, cache.KeyProducts, s.products.ListProducts)
}

func (s *service) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	key := fmt.Sprintf(cache.KeyProductsByCategory, categoryID)
	return cached(ctx, s, key, func(ctx context.Context) ([]models.Product, error) {
		return s.products.ListProductsByCategory(ctx, categoryID)
	})
}

func (s *service) GetProduct(ctx context.Context, id string) (models.Product, error) {
	key := fmt.Sprintf(cache.KeyProduct, id)
	return cached(ctx, s, key, func(ctx context.Context) (models.Product, error) {
		return s.products.GetProduct(ctx, id)
	})
}

// SearchProducts filters the whole product set in memory. A blank query
// returns every product. Results are not cached under the query; the
// product list they are filtered from is.
func (s *service) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	all, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}
	return FilterProducts(all, query), nil
}

func (s *service) FeaturedProducts(ctx context.Context, n int) ([]models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(products) > n {
		products = products[:n]
	}
	return products, nil
}

func (s *service) CreateProduct(ctx context.Context, input models.ProductInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CategoryID = strings.TrimSpace(input.CategoryID)
	input.Company = strings.TrimSpace(input.Company)
	input.SellerName = strings.TrimSpace(input.SellerName)
	input.SellerPhone = strings.TrimSpace(input.SellerPhone)
	input.Image = strings.TrimSpace(input.Image)
	input.Description = strings.TrimSpace(input.Description)

	if err := s.v.Struct(input); err != nil {
		return "", invalid(err)
	}
	if input.Price == nil {
		return "", invalidf("price is required")
	}
	if input.Price.IsNegative() {
		return "", invalidf("price must not be negative")
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return "", err
	}

	id, err := s.products.CreateProduct(ctx, models.Product{
		Name:        input.Name,
		Price:       input.Price.InexactFloat64(),
		CategoryID:  input.CategoryID,
		Company:     input.Company,
		SellerName:  input.SellerName,
		SellerPhone: input.SellerPhone,
		Image:       input.Image,
		Description: input.Description,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return "", err
	}
	s.written(ctx, cache.KeyProducts, events.ProductCreated, repository.ProductsCollection, id)
	return id, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error {
	patch.Name = trimmed(patch.Name)
	patch.CategoryID = trimmed(patch.CategoryID)
	patch.Company = trimmed(patch.Company)
	patch.SellerName = trimmed(patch.SellerName)
	patch.SellerPhone = trimmed(patch.SellerPhone)
	patch.Image = trimmed(patch.Image)
	patch.Description = trimmed(patch.Description)
	if patch == (models.ProductPatch{}) {
		return invalidf("nothing to update")
	}
	if err := s.v.Struct(patch); err != nil {
		return invalid(err)
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return invalidf("price must not be negative")
	}
	if patch.Image != nil && *patch.Image != "" {
		if err := s.v.Var(*patch.Image, "url"); err != nil {
			return invalidf("image must be a valid URL")
		}
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, *patch.CategoryID); err != nil {
			return err
		}
	}

	if err := s.products.UpdateProduct(ctx, id, patch); err != nil {
		return err
	}
	s.written(ctx, cache.KeyProducts, events.ProductUpdated, repository.ProductsCollection, id)
	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.written(ctx, cache.KeyProducts, events.ProductDeleted, repository.ProductsCollection, id)
	return nil
}

// checkCategory requires categoryID to name a category that exists now.
// Nothing keeps it that way afterwards.
func (s *service) checkCategory(ctx context.Context, categoryID string) error {
	_, err := s.categories.GetCategory(ctx, categoryID)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
		return invalidf("categoryId %q does not name an existing category", categoryID)
	}
	return err
}

func (s *service) written(ctx context.Context, key string, t events.Type, collection, id string) {
	s.genMu.Lock()
	s.gens[key]++
	err := s.cache.Invalidate(ctx, key)
	s.genMu.Unlock()
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("Cache invalidation failed")
	}
	s.events.Publish(ctx, events.New(t, collection, id))
}

func (s *service) generation(collection string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[collection]
}

// collectionKey returns the collection part of a query key.
func collectionKey(key string) string {
	collection, _, _ := strings.Cut(key, ":")
	return collection
}

// cached serves key from the cache, falling back to load on a miss or any
// cache failure. Only successful loads are stored, and only when no write to
// the collection finished while loading.
func cached[T any](ctx context.Context, s *service, key string, load func(context.Context) (T, error)) (T, error) {
	collection := collectionKey(key)
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
	}

	gen := s.generation(collection)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gens[collection] != gen {
		s.log.WithField("key", key).Debug("Skipping cache write: collection changed while loading")
		return v, nil
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return v, nil
}

// trimmed returns a trimmed copy so the caller's patch is not modified.
func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	return &t
}
