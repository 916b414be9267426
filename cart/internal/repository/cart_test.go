package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
)

func setupPostgres(t *testing.T, c context.Context) (*pgxpool.Pool, *CartRepository) {
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
			filepath.Join(migrationsDir, "20250803091755_create_table_profiles.up.sql"),
			filepath.Join(migrationsDir, "20250803092301_create_table_cart_items.up.sql"),
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

	return pool, NewCartRepository(pool)
}

func seedProduct(
	t *testing.T,
	c context.Context,
	pool *pgxpool.Pool,
	name string,
	price string,
	withFarm bool,
) uuid.UUID {
	t.Helper()

	var farmID *uuid.UUID
	if withFarm {
		id := uuid.New()
		_, err := pool.Exec(
			c,
			"INSERT INTO farms (id, name) VALUES ($1, $2)",
			id,
			"Green Acres",
		)
		require.NoError(t, err)
		farmID = &id
	}

	productID := uuid.New()
	_, err := pool.Exec(
		c,
		"INSERT INTO marketplace_products (id, name, price, unit, farm_id) VALUES ($1, $2, $3, $4, $5)",
		productID,
		name,
		price,
		"Per lb",
		farmID,
	)
	require.NoError(t, err)
	return productID
}

func TestCartRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	pool, repo := setupPostgres(t, c)
	userID := uuid.New()
	productID := seedProduct(t, c, pool, "Heirloom Tomatoes", "4.50", true)

	t.Run("insert and find enriched items", func(t *testing.T) {
		inserted, err := repo.InsertCartItem(c, InsertCartItemParams{
			UserID:    userID,
			ProductID: productID,
			Quantity:  2,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, inserted.ID)

		items, err := repo.FindCartItemsByUserId(c, userID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Heirloom Tomatoes", items[0].ProductName)
		assert.Equal(t, "Green Acres", items[0].FarmName)
		assert.Equal(t, "Per lb", items[0].ProductUnit)
		assert.True(t, decimal.RequireFromString("4.50").Equal(items[0].ProductPrice))
	})

	t.Run("find by user and product", func(t *testing.T) {
		item, err := repo.FindCartItemByUserIdAndProductId(c, userID, productID)
		require.NoError(t, err)
		assert.Equal(t, int32(2), item.Quantity)

		_, err = repo.FindCartItemByUserIdAndProductId(c, userID, uuid.New())
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("update quantity", func(t *testing.T) {
		item, err := repo.FindCartItemByUserIdAndProductId(c, userID, productID)
		require.NoError(t, err)

		require.NoError(t, repo.UpdateCartItemQuantity(c, item.ID, 5))

		updated, err := repo.FindCartItemByUserIdAndProductId(c, userID, productID)
		require.NoError(t, err)
		assert.Equal(t, int32(5), updated.Quantity)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		item, err := repo.FindCartItemByUserIdAndProductId(c, userID, productID)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteCartItem(c, item.ID))
		require.NoError(t, repo.DeleteCartItem(c, item.ID))

		items, err := repo.FindCartItemsByUserId(c, userID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("missing farm reads as empty string", func(t *testing.T) {
		orphanProductID := seedProduct(t, c, pool, "Wild Mushrooms", "7.00", false)
		_, err := repo.InsertCartItem(c, InsertCartItemParams{
			UserID:    userID,
			ProductID: orphanProductID,
			Quantity:  1,
		})
		require.NoError(t, err)

		items, err := repo.FindCartItemsByUserId(c, userID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "", items[0].FarmName)
	})

	t.Run("clear by user", func(t *testing.T) {
		require.NoError(t, repo.DeleteCartItemsByUserId(c, userID))

		items, err := repo.FindCartItemsByUserId(c, userID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
