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

	inErrors "github.com/farmstand/farmstand/internal/errors"
	"github.com/farmstand/farmstand/internal/pricing"
	"github.com/farmstand/farmstand/order/internal/repository"
)

var errStore = errors.New("store is down")

// fakeOrderStore backs all four reader interfaces the order service depends
// on. CreateOrder mimics the pgx implementation: the header and every line
// land together or not at all.
type fakeOrderStore struct {
	orders     map[uuid.UUID]repository.Order
	orderItems map[uuid.UUID][]repository.OrderItem
	cartLines  map[uuid.UUID][]repository.CartLine
	products   map[uuid.UUID]repository.Product
	profiles   map[uuid.UUID]repository.Profile

	failCreate    bool
	failClearCart bool
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders:     map[uuid.UUID]repository.Order{},
		orderItems: map[uuid.UUID][]repository.OrderItem{},
		cartLines:  map[uuid.UUID][]repository.CartLine{},
		products:   map[uuid.UUID]repository.Product{},
		profiles:   map[uuid.UUID]repository.Profile{},
	}
}

func (f *fakeOrderStore) CreateOrder(
	_ context.Context,
	param repository.InsertOrderParams,
	items []repository.InsertOrderItemParams,
) (repository.Order, error) {
	if f.failCreate {
		return repository.Order{}, errStore
	}
	order := repository.Order{
		ID:              uuid.New(),
		UserID:          param.UserID,
		Status:          "pending",
		TotalAmount:     param.TotalAmount,
		DeliveryAddress: param.DeliveryAddress,
		DeliveryPhone:   param.DeliveryPhone,
		Notes:           param.Notes,
	}
	f.orders[order.ID] = order
	lines := make([]repository.OrderItem, len(items))
	for i, item := range items {
		lines[i] = repository.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		}
	}
	f.orderItems[order.ID] = lines
	return order, nil
}

func (f *fakeOrderStore) FindOrdersByUserId(
	_ context.Context,
	userID uuid.UUID,
) ([]repository.Order, error) {
	orders := []repository.Order{}
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) FindOrderById(
	_ context.Context,
	orderID uuid.UUID,
) (repository.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	return order, nil
}

func (f *fakeOrderStore) FindOrderItemsByOrderId(
	_ context.Context,
	orderID uuid.UUID,
) ([]repository.OrderItem, error) {
	return f.orderItems[orderID], nil
}

func (f *fakeOrderStore) FindCartLinesByUserId(
	_ context.Context,
	userID uuid.UUID,
) ([]repository.CartLine, error) {
	return f.cartLines[userID], nil
}

func (f *fakeOrderStore) DeleteCartItemsByUserId(_ context.Context, userID uuid.UUID) error {
	if f.failClearCart {
		return errStore
	}
	delete(f.cartLines, userID)
	return nil
}

func (f *fakeOrderStore) FindProductById(
	_ context.Context,
	productID uuid.UUID,
) (repository.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (f *fakeOrderStore) FindProfileById(
	_ context.Context,
	userID uuid.UUID,
) (repository.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return repository.Profile{}, pgx.ErrNoRows
	}
	return profile, nil
}

func newTestService(store *fakeOrderStore, policy pricing.Policy) OrderService {
	return NewOrderService(store, store, store, store, policy)
}

func seedCart(store *fakeOrderStore, userID uuid.UUID, prices map[string]int32) {
	lines := []repository.CartLine{}
	for price, quantity := range prices {
		lines = append(lines, repository.CartLine{
			CartItemID: uuid.New(),
			ProductID:  uuid.New(),
			Quantity:   quantity,
			UnitPrice:  decimal.RequireFromString(price),
		})
	}
	store.cartLines[userID] = lines
}

func TestCreateOrderFromCartFreezesPrices(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store, pricing.Policy{})
	userID := uuid.New()
	seedCart(store, userID, map[string]int32{"3.50": 3})

	order, err := svc.CreateOrderFromCart(c, userID, "leave at the door")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, decimal.RequireFromString("3.50").Equal(order.Items[0].PriceAtPurchase))
	assert.Equal(t, int32(3), order.Items[0].Quantity)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "leave at the door", order.Notes)
	assert.True(t, decimal.RequireFromString("10.50").Equal(order.TotalAmount),
		"persisted total is the bare subtotal by default")
}

func TestCreateOrderFromCartWithFeesInTotal(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store, pricing.Policy{IncludeFees: true})
	userID := uuid.New()
	seedCart(store, userID, map[string]int32{"10.50": 1})

	order, err := svc.CreateOrderFromCart(c, userID, "")
	require.NoError(t, err)

	// 10.50 subtotal + 5.00 delivery + 0.84 tax
	assert.True(t, decimal.RequireFromString("16.34").Equal(order.TotalAmount))
}

func TestCreateOrderFromCartEmptyCart(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestService(store, pricing.Policy{})

	_, err := svc.CreateOrderFromCart(context.Background(), uuid.New(), "")

	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	assert.Empty(t, store.orders, "no order row may exist for an empty cart")
}

func TestCreateOrderFromCartUnauthenticated(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), pricing.Policy{})

	_, err := svc.CreateOrderFromCart(context.Background(), uuid.Nil, "")

	assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
}

func TestCreateOrderFromCartClearsCart(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store, pricing.Policy{})
	userID := uuid.New()
	seedCart(store, userID, map[string]int32{"2.00": 2})

	_, err := svc.CreateOrderFromCart(c, userID, "")
	require.NoError(t, err)

	assert.Empty(t, store.cartLines[userID])
}

func TestCreateOrderFromCartFailurePreservesCart(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	store.failCreate = true
	svc := newTestService(store, pricing.Policy{})
	userID := uuid.New()
	seedCart(store, userID, map[string]int32{"3.50": 3})

	_, err := svc.CreateOrderFromCart(c, userID, "")

	require.Error(t, err)
	assert.Empty(t, store.orders, "no order may exist after a failed insert")
	require.Len(t, store.cartLines[userID], 1, "cart must be untouched after a failed checkout")
	assert.Equal(t, int32(3), store.cartLines[userID][0].Quantity)
}

func TestCreateOrderFromCartSurvivesFailedCartClear(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	store.failClearCart = true
	svc := newTestService(store, pricing.Policy{})
	userID := uuid.New()
	seedCart(store, userID, map[string]int32{"2.00": 2})

	order, err := svc.CreateOrderFromCart(c, userID, "")

	require.NoError(t, err, "order must stand even when the cart clear fails")
	assert.Len(t, store.orderItems[order.ID], 1)
}

func TestCreateOrderFromCartDeliveryDetails(t *testing.T) {
	tests := []struct {
		name            string
		profile         *repository.Profile
		expectedAddress string
		expectedPhone   string
	}{
		{
			name:            "missing profile",
			profile:         nil,
			expectedAddress: "Please update your delivery address",
			expectedPhone:   "",
		},
		{
			name:            "blank full name",
			profile:         &repository.Profile{FullName: "", Phone: "555-0101"},
			expectedAddress: "Please update your delivery address",
			expectedPhone:   "555-0101",
		},
		{
			name:            "named profile",
			profile:         &repository.Profile{FullName: "Dana Whitfield", Phone: "555-0102"},
			expectedAddress: "Dana Whitfield's address",
			expectedPhone:   "555-0102",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			store := newFakeOrderStore()
			svc := newTestService(store, pricing.Policy{})
			userID := uuid.New()
			seedCart(store, userID, map[string]int32{"1.00": 1})
			if tt.profile != nil {
				profile := *tt.profile
				profile.ID = userID
				store.profiles[userID] = profile
			}

			order, err := svc.CreateOrderFromCart(c, userID, "")
			require.NoError(t, err)

			assert.Equal(t, tt.expectedAddress, order.DeliveryAddress)
			assert.Equal(t, tt.expectedPhone, order.DeliveryPhone)
		})
	}
}

func TestCreateOrderForProduct(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store, pricing.Policy{})
	userID := uuid.New()
	productID := uuid.New()
	store.products[productID] = repository.Product{
		ID:      productID,
		Name:    "Raw Honey",
		Price:   decimal.RequireFromString("8.75"),
		InStock: true,
	}

	order, err := svc.CreateOrderForProduct(c, userID, productID, 2, "")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, productID, order.Items[0].ProductID)
	assert.Equal(t, int32(2), order.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("17.50").Equal(order.TotalAmount))
}

func TestCreateOrderForProductDefaultsQuantityToOne(t *testing.T) {
	c := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store, pricing.Policy{})
	productID := uuid.New()
	store.products[productID] = repository.Product{
		ID:    productID,
		Price: decimal.RequireFromString("8.75"),
	}

	order, err := svc.CreateOrderForProduct(c, uuid.New(), productID, 0, "")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, int32(1), order.Items[0].Quantity)
}

func TestCreateOrderForProductNotFound(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), pricing.Policy{})

	_, err := svc.CreateOrderForProduct(context.Background(), uuid.New(), uuid.New(), 1, "")

	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestFindOrderByIdNotFound(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), pricing.Policy{})

	_, err := svc.FindOrderById(context.Background(), uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
}

func TestFindOrdersDegradesToEmpty(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), pricing.Policy{})

	orders := svc.FindOrders(context.Background(), uuid.Nil)

	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
