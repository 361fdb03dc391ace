package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/dharamshala/internal/helpers"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeValidator struct {
	claims *helpers.Claims
}

func (f fakeValidator) ValidateToken(token string) (*helpers.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	cp := *f.claims
	return &cp, nil
}

type fakeAccounts map[primitive.ObjectID]*models.Account

func (f fakeAccounts) GetAccountByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, &models.NotFoundError{Resource: "account", ID: id.Hex()}
}

func newEngine(v TokenValidator, extra ...gin.HandlerFunc) *gin.Engine {
	return newEngineWithAccounts(v, nil, extra...)
}

func newEngineWithAccounts(v TokenValidator, accounts AccountLookup, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(logger, false))
	handlers := append([]gin.HandlerFunc{AuthMiddleware(v, accounts, logger)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := helpers.ClaimsFromContext(c)
		c.String(http.StatusOK, claims.Subject)
	})
	r.GET("/private", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	claims := &helpers.Claims{Role: "owner", RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	r := newEngine(fakeValidator{claims: claims})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "good"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles(t *testing.T) {
	owner := &helpers.Claims{Role: "owner", RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	r := newEngine(fakeValidator{claims: owner}, RequireRoles(models.RoleSuperAdmin))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	root := &helpers.Claims{Role: "super admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "root"}}
	r = newEngine(fakeValidator{claims: root}, RequireRoles(models.RoleSuperAdmin))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareUsesStoredRole(t *testing.T) {
	id := primitive.NewObjectID()
	accounts := fakeAccounts{id: {ID: id, Email: "root@example.com", Role: models.RoleOwner}}
	stale := &helpers.Claims{Role: "super_admin", RegisteredClaims: jwt.RegisteredClaims{Subject: id.Hex()}}
	r := newEngineWithAccounts(fakeValidator{claims: stale}, accounts, RequireRoles(models.RoleSuperAdmin))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	accounts[id].Role = models.RoleSuperAdmin
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	delete(accounts, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	foreign := &helpers.Claims{Role: "owner", RegisteredClaims: jwt.RegisteredClaims{Subject: "auth0|123"}}
	r = newEngineWithAccounts(fakeValidator{claims: foreign}, accounts)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandlerHidesDetailsOutsideDevelopment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, expose := range []bool{false, true} {
		r := gin.New()
		r.Use(ErrorHandler(logger, expose))
		r.GET("/boom", func(c *gin.Context) {
			_ = c.Error(errors.New("db exploded"))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		if expose {
			assert.Contains(t, w.Body.String(), "db exploded")
		} else {
			assert.NotContains(t, w.Body.String(), "db exploded")
		}
	}
}
