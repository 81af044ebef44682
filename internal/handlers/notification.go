package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/souqly/storefront/internal/service"
)

type NotificationHandler struct {
	Svc *service.NotificationService
}

func (h *NotificationHandler) GetMyNotifications(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}

	notes, err := h.Svc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}
	noteID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.MarkRead(c.Request().Context(), userID, noteID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "notification read"})
}
