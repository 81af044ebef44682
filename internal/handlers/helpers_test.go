package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/souqly/storefront/internal/config"
	"github.com/souqly/storefront/internal/models"
	"github.com/souqly/storefront/internal/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		IsAdmin:      admin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	category := &models.Category{Name: "category-for-" + name}
	require.NoError(t, db.Create(category).Error)

	product := &models.Product{
		Name:         name,
		Description:  "test product",
		Price:        price,
		ImageCover:   "/uploads/cover.jpg",
		CategoryID:   category.ID,
		CountInStock: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// newContext builds an echo context for a JSON request and stamps the
// authenticated identity the same way the auth middleware does.
func newContext(t *testing.T, method, target, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if user != nil {
		c.Set("userID", user.ID)
		if user.IsAdmin {
			c.Set("role", service.RoleAdmin)
		} else {
			c.Set("role", service.RoleUser)
		}
	}
	return c, rec
}

func requireHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, want, he.Code)
}
