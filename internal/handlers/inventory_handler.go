package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/services"
)

func AddInventoryItem(inv *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var in models.NewInventoryItem
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}

		items, err := inv.AddItem(c.Request.Context(), p, c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(items, "item added successfully"))
	}
}

func UpdateInventoryItem(inv *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var patch models.InventoryPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}

		items, err := inv.UpdateItem(c.Request.Context(), p, c.Param("id"), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(items, "item updated successfully"))
	}
}

// RemoveInventoryItem answers 200 even when the item does not exist.
func RemoveInventoryItem(inv *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		items, removed, err := inv.RemoveItem(c.Request.Context(), p, c.Param("id"), c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		msg := "item removed successfully"
		if !removed {
			msg = "item not found"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(items, msg))
	}
}
