package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/souqly/storefront/internal/models"
)

func placeRequest(p *models.Product, qty int) PlaceOrderRequest {
	itemsPrice := p.Price * float64(qty)
	return PlaceOrderRequest{
		Items: []PlaceOrderItem{{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       qty,
			Image:     p.ImageCover,
			Price:     p.Price,
		}},
		ShippingAddress: models.ShippingAddress{
			Street:     "1 Main St",
			City:       "Springfield",
			Country:    "US",
			PostalCode: "12345",
			Phone:      "555-0100",
		},
		PaymentMethod: "cash_on_delivery",
		ItemsPrice:    itemsPrice,
		TaxPrice:      1.5,
		ShippingPrice: 10,
		TotalPrice:    itemsPrice + 1.5 + 10,
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	user := seedUser(t, db, "alice", false)

	_, err := svc.PlaceOrder(context.Background(), user.ID, PlaceOrderRequest{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderRejectsBadQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	user := seedUser(t, db, "alice", false)
	product := seedProduct(t, db, "lamp", 25, 5)

	req := placeRequest(product, 2)
	req.Items[0].Qty = 0
	_, err := svc.PlaceOrder(context.Background(), user.ID, req)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 5, stockOf(t, db, product.ID))
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	user := seedUser(t, db, "alice", false)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), user.ID, placeRequest(product, 2))
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	require.False(t, order.IsPaid)
	require.False(t, order.IsDelivered)
	require.Equal(t, 3, stockOf(t, db, product.ID))

	require.Len(t, order.Items, 1)
	require.Equal(t, product.ID, order.Items[0].ProductID)
	require.Equal(t, 2, order.Items[0].Qty)
	require.Equal(t, product.Name, order.Items[0].Name)
	require.Equal(t, product.Price, order.Items[0].Price)

	require.Equal(t, order.TotalPrice, order.ItemsPrice+order.TaxPrice+order.ShippingPrice)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	user := seedUser(t, db, "alice", false)
	product := seedProduct(t, db, "lamp", 25, 1)

	_, err := svc.PlaceOrder(context.Background(), user.ID, placeRequest(product, 2))
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "lamp")

	// The transaction rolls back: no orphan order, stock untouched.
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
	require.Equal(t, 1, stockOf(t, db, product.ID))
}

func TestPlaceOrderRollsBackEarlierDecrements(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	user := seedUser(t, db, "alice", false)
	plenty := seedProduct(t, db, "plenty", 10, 5)
	scarce := seedProduct(t, db, "scarce", 10, 1)

	req := placeRequest(plenty, 2)
	req.Items = append(req.Items, PlaceOrderItem{
		ProductID: scarce.ID,
		Name:      scarce.Name,
		Qty:       3,
		Price:     scarce.Price,
	})

	_, err := svc.PlaceOrder(context.Background(), user.ID, req)
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.Equal(t, 5, stockOf(t, db, plenty.ID))
	require.Equal(t, 1, stockOf(t, db, scarce.ID))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPlaceOrderSkipsMissingProduct(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	user := seedUser(t, db, "alice", false)

	req := PlaceOrderRequest{
		Items: []PlaceOrderItem{{ProductID: 999, Name: "ghost", Qty: 1, Price: 10}},
	}
	order, err := svc.PlaceOrder(context.Background(), user.ID, req)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
}

func TestPlaceOrderLastUnit(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	product := seedProduct(t, db, "lamp", 25, 1)

	_, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 1))
	require.NoError(t, err)
	require.Equal(t, 0, stockOf(t, db, product.ID))

	_, err = svc.PlaceOrder(context.Background(), bob.ID, placeRequest(product, 1))
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 0, stockOf(t, db, product.ID))
}

func TestGetOrderAccess(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	admin := seedUser(t, db, "root", true)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 1))
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), alice.ID, false, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	require.Equal(t, "alice", got.User.Name)
	require.Equal(t, "alice@example.com", got.User.Email)

	_, err = svc.GetOrder(context.Background(), bob.ID, false, order.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.GetOrder(context.Background(), admin.ID, true, order.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), alice.ID, false, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkDeliveredStampsPayment(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 1))
	require.NoError(t, err)

	delivered, err := svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, delivered.IsDelivered)
	require.True(t, delivered.IsPaid)
	require.NotNil(t, delivered.DeliveredAt)
	require.NotNil(t, delivered.PaidAt)

	// The owner gets a notification row.
	var notes []models.Notification
	require.NoError(t, db.Where("user_id = ?", alice.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	require.False(t, notes[0].IsRead)

	// Idempotent: a second call simply re-stamps.
	again, err := svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, again.IsDelivered)

	_, err = svc.MarkDelivered(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancelRestoresStockExactly(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 3))
	require.NoError(t, err)
	require.Equal(t, 2, stockOf(t, db, product.ID))

	require.NoError(t, svc.CancelOrDelete(context.Background(), alice.ID, false, order.ID))
	require.Equal(t, 5, stockOf(t, db, product.ID))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCancelAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 1))
	require.NoError(t, err)

	err = svc.CancelOrDelete(context.Background(), bob.ID, false, order.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	err = svc.CancelOrDelete(context.Background(), alice.ID, false, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancelDeliveredPolicy(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "root", true)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 1))
	require.NoError(t, err)

	_, err = svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)

	err = svc.CancelOrDelete(context.Background(), alice.ID, false, order.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, svc.CancelOrDelete(context.Background(), admin.ID, true, order.ID))
	require.Equal(t, 5, stockOf(t, db, product.ID))
}

func TestCancelSkipsMissingProduct(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	catalog := &CatalogService{DB: db}
	alice := seedUser(t, db, "alice", false)
	product := seedProduct(t, db, "lamp", 25, 5)

	order, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 2))
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteProduct(context.Background(), product.ID))

	// Restoring stock for a deleted product is a silent no-op.
	require.NoError(t, svc.CancelOrDelete(context.Background(), alice.ID, false, order.ID))
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	product := seedProduct(t, db, "lamp", 25, 10)

	first, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 1))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), bob.ID, placeRequest(product, 1))
	require.NoError(t, err)

	second, err := svc.PlaceOrder(context.Background(), alice.ID, placeRequest(product, 2))
	require.NoError(t, err)

	// Force distinct creation times so the admin ordering is observable.
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", first.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	mine, err := svc.ListMine(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		require.Equal(t, alice.ID, o.UserID)
	}

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, first.ID, all[len(all)-1].ID)
	require.Equal(t, second.ID, all[0].ID)
	require.True(t, all[0].CreatedAt.After(all[len(all)-1].CreatedAt))
}

func TestCheckoutLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	userA := seedUser(t, db, "usera", false)
	userB := seedUser(t, db, "userb", false)
	admin := seedUser(t, db, "root", true)
	product := seedProduct(t, db, "widget", 9.99, 2)

	// A takes both units.
	order, err := svc.PlaceOrder(context.Background(), userA.ID, placeRequest(product, 2))
	require.NoError(t, err)
	require.Equal(t, 0, stockOf(t, db, product.ID))

	// B cannot order anymore.
	_, err = svc.PlaceOrder(context.Background(), userB.ID, placeRequest(product, 1))
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Delivery settles payment.
	delivered, err := svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, delivered.IsDelivered)
	require.True(t, delivered.IsPaid)

	// A can no longer cancel.
	err = svc.CancelOrDelete(context.Background(), userA.ID, false, order.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	// The admin can, and the shelf refills.
	require.NoError(t, svc.CancelOrDelete(context.Background(), admin.ID, true, order.ID))
	require.Equal(t, 2, stockOf(t, db, product.ID))
}
