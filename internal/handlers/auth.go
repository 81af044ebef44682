package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/souqly/storefront/internal/mykafka"
	"github.com/souqly/storefront/internal/service"
)

type AuthHandler struct {
	Users    *service.UserService
	Tokens   *service.TokenService
	Producer *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "user_events", map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Authentication failures stay 401 rather than the resource-level 403.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	access, refresh, err := h.Tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(service.NewCookie("accessToken", access, time.Now().Add(15*time.Minute)))
	c.SetCookie(service.NewCookie("refreshToken", refresh, time.Now().Add(7*24*time.Hour)))

	publish(c, h.Producer, "user_events", map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"image":         user.Image,
		"isAdmin":       user.IsAdmin,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token missing")
	}

	if err := h.Tokens.Revoke(refreshCookie.Value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(service.NewCookie("accessToken", "", expired))
	c.SetCookie(service.NewCookie("refreshToken", "", expired))

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}

	user, err := h.Users.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, _, err := requester(c)
	if err != nil {
		return err
	}

	var req service.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) GetUsers(c echo.Context) error {
	users, err := h.Users.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req service.UserUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Users.DeleteUser(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}
