package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/services"
)

// The handlers below sit behind RequireRoles(super_admin).

func ListAccounts(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := a.ListAccounts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(accounts, len(accounts), "accounts retrieved successfully"))
	}
}

func GetAccount(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := a.GetAccount(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(account, "account retrieved successfully"))
	}
}

func UpdateAccount(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.AccountPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}
		account, err := a.UpdateAccount(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(account, "account updated successfully"))
	}
}

func DeleteAccount(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "account deleted successfully"))
	}
}

func Dashboard(a *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := a.Dashboard(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, "dashboard retrieved successfully"))
	}
}
