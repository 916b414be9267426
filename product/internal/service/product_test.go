package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	inErrors "github.com/farmstand/farmstand/internal/errors"
	"github.com/farmstand/farmstand/product/internal/repository"
)

// fakeProductRepository serves a fixed catalog and counts database reads so
// cache hits are observable.
type fakeProductRepository struct {
	products   []repository.Product
	categories []repository.Category
	farms      []repository.Farm

	productReads int
}

func (f *fakeProductRepository) FindProducts(_ context.Context) ([]repository.Product, error) {
	f.productReads++
	return f.products, nil
}

func (f *fakeProductRepository) FindProductsByCategoryId(
	_ context.Context,
	categoryID uuid.UUID,
) ([]repository.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepository) FindProductById(
	_ context.Context,
	productID uuid.UUID,
) (repository.Product, error) {
	f.productReads++
	for _, product := range f.products {
		if product.ID == productID {
			return product, nil
		}
	}
	return repository.Product{}, pgx.ErrNoRows
}

func (f *fakeProductRepository) FindCategories(_ context.Context) ([]repository.Category, error) {
	return f.categories, nil
}

func (f *fakeProductRepository) FindFarms(_ context.Context) ([]repository.Farm, error) {
	return f.farms, nil
}

func setupRedis(t *testing.T, c context.Context) *redis.Client {
	t.Helper()

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return client
}

func newCatalogRepository() *fakeProductRepository {
	return &fakeProductRepository{
		products: []repository.Product{
			{
				ID:           uuid.New(),
				Name:         "Heirloom Tomatoes",
				Price:        decimal.RequireFromString("4.50"),
				Unit:         "Per lb",
				InStock:      true,
				FarmName:     "Green Acres",
				CategoryName: "Vegetables",
			},
			{
				ID:           uuid.New(),
				Name:         "Raw Honey",
				Price:        decimal.RequireFromString("8.75"),
				Unit:         "Per jar",
				InStock:      true,
				FarmName:     "Sunny Fields",
				CategoryName: "Pantry",
			},
		},
		categories: []repository.Category{
			{ID: uuid.New(), Name: "Vegetables", Emoji: "🥕"},
			{ID: uuid.New(), Name: "Pantry", Emoji: "🍯"},
		},
		farms: []repository.Farm{
			{ID: uuid.New(), Name: "Green Acres", Location: "Valley Rd"},
		},
	}
}

func TestFindProductsServesSecondReadFromCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	repo := newCatalogRepository()
	svc := NewProductService(repo, setupRedis(t, c))

	first, err := svc.FindProducts(c, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, repo.productReads)

	second, err := svc.FindProducts(c, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.productReads, "second read must come from cache")
}

func TestFindProductByIdCachesResult(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	repo := newCatalogRepository()
	svc := NewProductService(repo, setupRedis(t, c))
	productID := repo.products[0].ID

	first, err := svc.FindProductById(c, productID)
	require.NoError(t, err)
	assert.Equal(t, "Heirloom Tomatoes", first.Name)
	require.Equal(t, 1, repo.productReads)

	second, err := svc.FindProductById(c, productID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.productReads)
}

func TestFindProductByIdNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	svc := NewProductService(newCatalogRepository(), setupRedis(t, c))

	_, err := svc.FindProductById(c, uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestFindCatalogReturnsAllSections(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	svc := NewProductService(newCatalogRepository(), setupRedis(t, c))

	catalog := svc.FindCatalog(c)

	assert.Len(t, catalog.Products, 2)
	assert.Len(t, catalog.Categories, 2)
	assert.Len(t, catalog.Farms, 1)
}
