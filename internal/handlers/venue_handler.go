package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/services"
)

func CreateVenue(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var in models.VenueInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}

		venue, err := v.CreateVenue(c.Request.Context(), p, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(venue, "venue created successfully"))
	}
}

// UpdateVenue expects the venue id in the body, not the path.
func UpdateVenue(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var patch models.VenuePatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request body"))
			return
		}

		venue, err := v.UpdateVenue(c.Request.Context(), p, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(venue, "venue updated successfully"))
	}
}

func DeleteVenue(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		if err := v.DeleteVenue(c.Request.Context(), p, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "venue deleted successfully"))
	}
}

// GetVenue is public. ?populate=owner adds the owner's account summary.
func GetVenue(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		populate := c.Query("populate") == "owner"
		venue, err := v.GetVenueByID(c.Request.Context(), c.Param("id"), populate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(venue, "venue retrieved successfully"))
	}
}

// ListVenues scopes the result to the account named by ?id, defaulting to
// the caller.
func ListVenues(v *services.VenuesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		venues, err := v.ListVenues(c.Request.Context(), p, c.Query("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(venues, len(venues), "venues retrieved successfully"))
	}
}
