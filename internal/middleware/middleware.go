package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/dharamshala/internal/helpers"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenValidator is satisfied by *helpers.TokenValidator.
type TokenValidator interface {
	ValidateToken(token string) (*helpers.Claims, error)
}

// AccountLookup is satisfied by models.AccountsRepo.
type AccountLookup interface {
	GetAccountByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP Request", attrs...)
			return
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler renders errors attached with c.Error as a 500. The error text
// is only exposed when exposeDetails is set.
func ErrorHandler(logger *slog.Logger, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		if c.Writer.Written() {
			return
		}
		res := models.ErrorResponse("Internal server error")
		if exposeDetails {
			res.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, res)
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token, err := c.Cookie("access_token"); err == nil {
		return token
	}
	return ""
}

// AuthMiddleware accepts a bearer token or the access_token cookie and stores
// the validated claims under helpers.ClaimsKey. With a non-nil accounts lookup
// the role and email are reloaded from the store, so a demoted or deleted
// account loses its rights before the token expires.
func AuthMiddleware(validator TokenValidator, accounts AccountLookup, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			requestID, _ := c.Get("request_id")
			logger.Info("Rejected token", "request_id", requestID, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("invalid or expired token"))
			return
		}

		if accounts != nil {
			if !refreshClaims(c, accounts, claims, logger) {
				return
			}
		}

		c.Set(helpers.ClaimsKey, claims)
		c.Next()
	}
}

func refreshClaims(c *gin.Context, accounts AccountLookup, claims *helpers.Claims, logger *slog.Logger) bool {
	requestID, _ := c.Get("request_id")
	id, err := models.ParseObjectID(claims.Subject)
	if err != nil {
		logger.Info("Rejected token", "request_id", requestID, "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("invalid or expired token"))
		return false
	}

	account, err := accounts.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			logger.Info("Token for missing account", "request_id", requestID, "account_id", id.Hex())
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("account no longer exists"))
			return false
		}
		_ = c.Error(err)
		c.Abort()
		return false
	}

	claims.Role = string(account.Role)
	claims.Email = account.Email
	claims.Name = account.Name
	return true
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := helpers.ClaimsFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse(models.ErrForbidden.Error()))
	}
}
