package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
)

func setupPostgres(t *testing.T, c context.Context) (*pgxpool.Pool, *ProductRepository) {
	t.Helper()

	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join(migrationsDir, "20250803091210_create_table_catalog.up.sql"),
			filepath.Join(migrationsDir, "20250803093518_create_table_product_favorites.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pgConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed parsing pgconfig with error: %s", err)
	}
	pgConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(c, pgConfig)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	return pool, NewProductRepository(pool)
}

func seedCatalogProduct(
	t *testing.T,
	c context.Context,
	pool *pgxpool.Pool,
	name string,
	categoryID uuid.UUID,
	inStock bool,
) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	_, err := pool.Exec(
		c,
		"INSERT INTO marketplace_products (id, name, price, in_stock, category_id) VALUES ($1, $2, $3, $4, $5)",
		productID,
		name,
		"4.50",
		inStock,
		categoryID,
	)
	require.NoError(t, err)
	return productID
}

func TestProductRepositoryStockFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	pool, repo := setupPostgres(t, c)

	categoryID := uuid.New()
	_, err := pool.Exec(
		c,
		"INSERT INTO product_categories (id, name) VALUES ($1, $2)",
		categoryID,
		"Vegetables",
	)
	require.NoError(t, err)

	stockedID := seedCatalogProduct(t, c, pool, "Heirloom Tomatoes", categoryID, true)
	soldOutID := seedCatalogProduct(t, c, pool, "Rainbow Chard", categoryID, false)

	t.Run("listing returns only in-stock products", func(t *testing.T) {
		products, err := repo.FindProducts(c)
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, stockedID, products[0].ID)
		assert.Equal(t, "Vegetables", products[0].CategoryName)
	})

	t.Run("category listing returns only in-stock products", func(t *testing.T) {
		products, err := repo.FindProductsByCategoryId(c, categoryID)
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, stockedID, products[0].ID)
	})

	t.Run("by-id lookup still finds sold-out products", func(t *testing.T) {
		product, err := repo.FindProductById(c, soldOutID)
		require.NoError(t, err)

		assert.Equal(t, "Rainbow Chard", product.Name)
		assert.False(t, product.InStock)
	})
}
