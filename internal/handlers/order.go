package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/souqly/storefront/internal/metrics"
	"github.com/souqly/storefront/internal/mykafka"
	"github.com/souqly/storefront/internal/service"
)

type OrderHandler struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}

	var req service.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.PlaceOrder(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}

	metrics.OrdersPlaced.Inc()
	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalPrice,
	})

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, isAdmin, err := requester(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(c.Request().Context(), userID, isAdmin, orderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) MarkDelivered(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.MarkDelivered(c.Request().Context(), orderID)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_delivered",
		"userID":  order.UserID,
		"orderID": order.ID,
	})

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	userID, isAdmin, err := requester(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.CancelOrDelete(c.Request().Context(), userID, isAdmin, orderID); err != nil {
		return httpError(err)
	}

	metrics.OrdersCancelled.Inc()
	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_deleted",
		"userID":  userID,
		"orderID": orderID,
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "order deleted and stock restored"})
}
