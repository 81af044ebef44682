package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/souqly/storefront/internal/models"
)

type OrderService struct {
	DB *gorm.DB
}

type PlaceOrderItem struct {
	ProductID uint    `json:"product"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
}

type PlaceOrderRequest struct {
	Items           []PlaceOrderItem       `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

// PlaceOrder creates the order record and decrements stock for every line
// item inside one transaction. A failed stock check rolls the whole order
// back: either the order exists with all decrements applied, or nothing
// happened. Stock is taken with a conditional update so two concurrent
// orders cannot both take the last unit.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no order items", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: product required", ErrValidation)
		}
		if it.Qty < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			Image:     it.Image,
			Price:     it.Price,
		})
	}

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, it := range req.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND count_in_stock >= ?", it.ProductID, it.Qty).
				UpdateColumn("count_in_stock", gorm.Expr("count_in_stock - ?", it.Qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}

			var p models.Product
			err := tx.Select("id", "name").First(&p, it.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The snapshot keeps the item even when the catalog entry
				// is gone, matching the cancel path's best-effort restore.
				continue
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: requested quantity of %q is not available", ErrInsufficientStock, p.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID uint, isAdmin bool, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("User").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", ErrNotAuthorized)
	}
	return &order, nil
}

// MarkDelivered flips the order into its terminal state. Delivery implies
// payment settlement, so both flag pairs are stamped. Calling it again
// simply re-stamps the timestamps.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		now := time.Now().UTC()
		order.IsDelivered = true
		order.DeliveredAt = &now
		order.IsPaid = true
		order.PaidAt = &now

		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		note := models.Notification{
			UserID:  order.UserID,
			Message: fmt.Sprintf("Your order #%d has been delivered", order.ID),
		}
		return tx.Create(&note).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelOrDelete removes an order and puts its units back on the shelf.
// Non-admins may only cancel their own undelivered orders. A line item
// whose product no longer exists is skipped, not an error.
func (s *OrderService) CancelOrDelete(ctx context.Context, userID uint, isAdmin bool, orderID uint) error {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return err
	}

	if !isAdmin && order.UserID != userID {
		return fmt.Errorf("%w: not your order", ErrNotAuthorized)
	}
	if !isAdmin && order.IsDelivered {
		return fmt.Errorf("%w: cannot cancel a delivered order", ErrInvalidState)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				UpdateColumn("count_in_stock", gorm.Expr("count_in_stock + ?", it.Qty))
			if res.Error != nil {
				return res.Error
			}
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
}
