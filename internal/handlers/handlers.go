package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joshua-takyi/dharamshala/internal/helpers"
	"github.com/joshua-takyi/dharamshala/internal/locks"
	"github.com/joshua-takyi/dharamshala/internal/models"
)

// respondError maps domain errors onto status codes. Anything unknown goes to
// the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	var (
		ve  *models.ValidationError
		ce  *models.ConflictError
		nf  *models.NotFoundError
		mid *models.MalformedIdError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, models.DetailedErrorResponse("validation failed", ve.Fields))
	case errors.As(err, &ce):
		c.JSON(http.StatusBadRequest, models.DetailedErrorResponse(ce.Error(), ce))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, models.DetailedErrorResponse(nf.Error(), nf))
	case errors.As(err, &mid):
		c.JSON(http.StatusBadRequest, models.DetailedErrorResponse(mid.Error(), mid))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrDuplicateAccount):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
	case errors.Is(err, locks.ErrBusy):
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse("venue is busy, please retry"))
	default:
		_ = c.Error(err)
	}
}

func principal(c *gin.Context) (models.Principal, bool) {
	p, err := helpers.PrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return models.Principal{}, false
	}
	return p, true
}

// bindList reads a body that is either a bare JSON array or an object
// wrapping the array under key.
func bindList[T any](c *gin.Context, key string) ([]T, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, models.NewValidationError(key, "is required")
	}

	if body[0] != '[' {
		var wrapped map[string]json.RawMessage
		if err := binding.JSON.BindBody(body, &wrapped); err != nil {
			return nil, models.NewValidationError(key, "request body must be an array or an object with "+key)
		}
		raw, ok := wrapped[key]
		if !ok {
			return nil, models.NewValidationError(key, "is required")
		}
		body = raw
	}

	var list []T
	if err := binding.JSON.BindBody(body, &list); err != nil {
		return nil, models.NewValidationError(key, "must be an array")
	}
	return list, nil
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}
