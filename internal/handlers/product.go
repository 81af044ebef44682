package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/souqly/storefront/internal/logging"
	"github.com/souqly/storefront/internal/mykafka"
	"github.com/souqly/storefront/internal/service"
	"github.com/souqly/storefront/internal/service/search"
)

type ProductHandler struct {
	Svc      *service.CatalogService
	Users    *service.UserService
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	var categoryID uint
	if v := c.QueryParam("category"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		categoryID = uint(id)
	}

	products, err := h.Svc.ListProducts(c.Request().Context(), keyword, categoryID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}

	var req service.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	h.reindex(c, product.ID)
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_created",
		"userID":    userID,
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req service.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}

	h.reindex(c, product.ID)
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_updated",
		"userID":    userID,
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	if h.Indexer != nil {
		if err := h.Indexer.DeleteProduct(c.Request().Context(), id); err != nil {
			logging.FromContext(c.Request().Context()).Error("search index delete failed", "productID", id, "error", err)
		}
	}
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_deleted",
		"userID":    userID,
		"productID": id,
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "product deleted"})
}

func (h *ProductHandler) CreateReview(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req service.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// The review snapshots the author's current display name and avatar.
	user, err := h.Users.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	review, err := h.Svc.AddReview(c.Request().Context(), productID, userID, user.Name, user.Image, req)
	if err != nil {
		return httpError(err)
	}

	h.reindex(c, productID)
	return c.JSON(http.StatusCreated, review)
}

func (h *ProductHandler) DeleteReview(c echo.Context) error {
	userID, isAdmin, err := requester(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}
	reviewID, err := paramID(c, "reviewId")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveReview(c.Request().Context(), productID, reviewID, userID, isAdmin); err != nil {
		return httpError(err)
	}

	h.reindex(c, productID)
	return c.JSON(http.StatusOK, messageResponse{Message: "review removed"})
}

func (h *ProductHandler) reindex(c echo.Context, productID uint) {
	if h.Indexer == nil {
		return
	}
	product, err := h.Svc.GetProduct(c.Request().Context(), productID)
	if err == nil {
		err = h.Indexer.IndexProduct(c.Request().Context(), product)
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("search index update failed", "productID", productID, "error", err)
	}
}
