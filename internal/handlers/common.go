package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/souqly/storefront/internal/logging"
	"github.com/souqly/storefront/internal/mykafka"
	"github.com/souqly/storefront/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

// httpError translates the service error taxonomy into one consistent set
// of status codes: validation/stock/state 400, not-found 404, authz 403.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidState):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func requester(c echo.Context) (uint, bool, error) {
	id, ok := c.Get("userID").(uint)
	if !ok || id == 0 {
		return 0, false, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	role, _ := c.Get("role").(string)
	return id, role == service.RoleAdmin, nil
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func publish(c echo.Context, p *mykafka.Producer, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}
