package helpers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/dharamshala/internal/models"
)

// ClaimsKey is the gin context key AuthMiddleware stores *Claims under.
const ClaimsKey = "user"

type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Helper methods for role checking
func (c *Claims) IsSuperAdmin() bool {
	return c.HasRole(models.RoleSuperAdmin)
}

func (c *Claims) HasRole(role models.Role) bool {
	r, ok := models.ParseRole(c.Role)
	return ok && r == role
}

func (c *Claims) IsOwner(userID string) bool {
	return c.Subject == userID
}

func (c *Claims) GetSafeRole() models.Role {
	if r, ok := models.ParseRole(c.Role); ok {
		return r
	}
	return models.RoleUser
}

// Principal converts the token subject into the caller identity used by services.
func (c *Claims) Principal() (models.Principal, error) {
	id, err := models.ParseObjectID(c.Subject)
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{ID: id, Role: c.GetSafeRole(), Email: c.Email}, nil
}

func ClaimsFromContext(c *gin.Context) (*Claims, error) {
	raw, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, errors.New("no claims in request context")
	}
	claims, ok := raw.(*Claims)
	if !ok {
		return nil, errors.New("unexpected claims type in request context")
	}
	return claims, nil
}

func PrincipalFromContext(c *gin.Context) (models.Principal, error) {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return models.Principal{}, err
	}
	return claims.Principal()
}
