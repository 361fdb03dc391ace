package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/services"
)

const accessTokenCookie = "access_token"

func Register(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}

		account, err := a.Register(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(account, "account registered successfully"))
	}
}

// Login returns the profile and token, and also sets the token as an
// http-only cookie.
func Login(a *services.AccountService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.LoginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}

		res, err := a.Login(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}

		if res.Token != "" && res.ExpiresAt != nil {
			maxAge := int(time.Until(*res.ExpiresAt).Seconds())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(accessTokenCookie, res.Token, maxAge, "/", "", secureCookie, true)
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, "login successful"))
	}
}

func Logout(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(accessTokenCookie, "", -1, "/", "", secureCookie, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out successfully"))
	}
}

type meRequest struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
}

// Me returns the caller's profile. A super admin may name another account
// with "_id" (or "id") in the body.
func Me(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		var req meRequest
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := binding.JSON.BindBody(body, &req); err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
				return
			}
		}
		id := req.MongoID
		if id == "" {
			id = req.ID
		}

		account, err := a.Me(c.Request.Context(), p, id)
		if err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(account, "profile retrieved successfully"))
	}
}
