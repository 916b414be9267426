package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmstand/farmstand/cart/internal/repository"
	inErrors "github.com/farmstand/farmstand/internal/errors"
)

var errStore = errors.New("store is down")

// fakeCartRepository keeps cart rows in memory with the same semantics as the
// pgx implementation: one row per (user, product), ErrNoRows on misses,
// idempotent deletes.
type fakeCartRepository struct {
	items    map[uuid.UUID]repository.EnrichedCartItem
	failing  bool
	inserted int
	updated  int
}

func newFakeCartRepository() *fakeCartRepository {
	return &fakeCartRepository{items: map[uuid.UUID]repository.EnrichedCartItem{}}
}

func (f *fakeCartRepository) seed(
	userID uuid.UUID,
	productID uuid.UUID,
	quantity int32,
	price string,
	farm string,
	unit string,
) uuid.UUID {
	id := uuid.New()
	f.items[id] = repository.EnrichedCartItem{
		CartItem: repository.CartItem{
			ID:        id,
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		},
		ProductName:  "Heirloom Tomatoes",
		ProductPrice: decimal.RequireFromString(price),
		ProductUnit:  unit,
		FarmName:     farm,
	}
	return id
}

func (f *fakeCartRepository) FindCartItemsByUserId(
	_ context.Context,
	userID uuid.UUID,
) ([]repository.EnrichedCartItem, error) {
	if f.failing {
		return nil, errStore
	}
	items := []repository.EnrichedCartItem{}
	for _, item := range f.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeCartRepository) FindCartItemByUserIdAndProductId(
	_ context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (repository.CartItem, error) {
	if f.failing {
		return repository.CartItem{}, errStore
	}
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			return item.CartItem, nil
		}
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (f *fakeCartRepository) InsertCartItem(
	_ context.Context,
	param repository.InsertCartItemParams,
) (repository.CartItem, error) {
	if f.failing {
		return repository.CartItem{}, errStore
	}
	f.inserted++
	item := repository.CartItem{
		ID:        uuid.New(),
		UserID:    param.UserID,
		ProductID: param.ProductID,
		Quantity:  param.Quantity,
	}
	f.items[item.ID] = repository.EnrichedCartItem{CartItem: item}
	return item, nil
}

func (f *fakeCartRepository) UpdateCartItemQuantity(
	_ context.Context,
	cartItemID uuid.UUID,
	quantity int32,
) error {
	if f.failing {
		return errStore
	}
	f.updated++
	item, ok := f.items[cartItemID]
	if !ok {
		return nil
	}
	item.Quantity = quantity
	f.items[cartItemID] = item
	return nil
}

func (f *fakeCartRepository) DeleteCartItem(_ context.Context, cartItemID uuid.UUID) error {
	if f.failing {
		return errStore
	}
	delete(f.items, cartItemID)
	return nil
}

func (f *fakeCartRepository) DeleteCartItemsByUserId(
	_ context.Context,
	userID uuid.UUID,
) error {
	if f.failing {
		return errStore
	}
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
		}
	}
	return nil
}

func TestAddToCartMergesExistingLine(t *testing.T) {
	c := context.Background()
	repo := newFakeCartRepository()
	svc := NewCartService(repo)
	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, svc.AddToCart(c, userID, productID, 2))
	require.NoError(t, svc.AddToCart(c, userID, productID, 3))

	items, err := repo.FindCartItemsByUserId(c, userID)
	require.NoError(t, err)
	require.Len(t, items, 1, "same product must merge into one line")
	assert.Equal(t, int32(5), items[0].Quantity)
	assert.Equal(t, 1, repo.inserted)
	assert.Equal(t, 1, repo.updated)
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	c := context.Background()
	repo := newFakeCartRepository()
	svc := NewCartService(repo)
	userID := uuid.New()
	productID := uuid.New()

	require.NoError(t, svc.AddToCart(c, userID, productID, 0))

	items, err := repo.FindCartItemsByUserId(c, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int32(1), items[0].Quantity)
}

func TestAddToCartUnauthenticated(t *testing.T) {
	svc := NewCartService(newFakeCartRepository())

	err := svc.AddToCart(context.Background(), uuid.Nil, uuid.New(), 1)

	assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
}

func TestUpdateQuantityCollapsesLineAtZero(t *testing.T) {
	tests := []struct {
		name     string
		quantity int32
	}{
		{name: "zero quantity", quantity: 0},
		{name: "negative quantity", quantity: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			repo := newFakeCartRepository()
			svc := NewCartService(repo)
			userID := uuid.New()
			cartItemID := repo.seed(userID, uuid.New(), 3, "4.50", "Green Acres", "Per lb")

			require.NoError(t, svc.UpdateQuantity(c, cartItemID, tt.quantity))

			items, err := repo.FindCartItemsByUserId(c, userID)
			require.NoError(t, err)
			assert.Empty(t, items, "line must be removed, not stored with quantity <= 0")
		})
	}
}

func TestUpdateQuantitySetsStoredValue(t *testing.T) {
	c := context.Background()
	repo := newFakeCartRepository()
	svc := NewCartService(repo)
	userID := uuid.New()
	cartItemID := repo.seed(userID, uuid.New(), 3, "4.50", "Green Acres", "Per lb")

	require.NoError(t, svc.UpdateQuantity(c, cartItemID, 7))

	items, err := repo.FindCartItemsByUserId(c, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int32(7), items[0].Quantity)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	c := context.Background()
	repo := newFakeCartRepository()
	svc := NewCartService(repo)
	userID := uuid.New()
	cartItemID := repo.seed(userID, uuid.New(), 2, "4.50", "Green Acres", "Per lb")

	require.NoError(t, svc.RemoveFromCart(c, cartItemID))
	require.NoError(t, svc.RemoveFromCart(c, cartItemID), "second delete must succeed")

	items, err := repo.FindCartItemsByUserId(c, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetCartItemsAppliesDisplayDefaults(t *testing.T) {
	c := context.Background()
	repo := newFakeCartRepository()
	svc := NewCartService(repo)
	userID := uuid.New()
	repo.seed(userID, uuid.New(), 1, "3.25", "", "")

	items := svc.GetCartItems(c, userID)

	require.Len(t, items, 1)
	assert.Equal(t, "Unknown Farm", items[0].Product.Farm)
	assert.Equal(t, "Per kg", items[0].Product.Unit)
}

func TestGetCartItemsDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeCartRepository
		user uuid.UUID
	}{
		{name: "store error", repo: &fakeCartRepository{failing: true}, user: uuid.New()},
		{name: "unauthenticated", repo: newFakeCartRepository(), user: uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCartService(tt.repo)

			items := svc.GetCartItems(context.Background(), tt.user)

			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestClearCartRemovesOnlyOwnRows(t *testing.T) {
	c := context.Background()
	repo := newFakeCartRepository()
	svc := NewCartService(repo)
	userID := uuid.New()
	otherID := uuid.New()
	repo.seed(userID, uuid.New(), 1, "3.25", "Green Acres", "Per lb")
	repo.seed(userID, uuid.New(), 2, "5.00", "Green Acres", "Per lb")
	repo.seed(otherID, uuid.New(), 1, "2.00", "Sunny Fields", "Per kg")

	require.NoError(t, svc.ClearCart(c, userID))

	own, err := repo.FindCartItemsByUserId(c, userID)
	require.NoError(t, err)
	assert.Empty(t, own)

	other, err := repo.FindCartItemsByUserId(c, otherID)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
