package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/dharamshala/internal/models"
	"github.com/joshua-takyi/dharamshala/internal/services"
)

// BookDates accepts either [{...}] or {"bookings": [{...}]}.
func BookDates(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		inputs, err := bindList[models.BookingInput](c, "bookings")
		if err != nil {
			respondError(c, err)
			return
		}

		res, err := b.Book(c.Request.Context(), p, c.Param("id"), inputs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, "dates booked successfully"))
	}
}

// UnbookDates accepts either ["2024-06-01", ...] or {"dates": [...]}.
func UnbookDates(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		dates, err := bindList[any](c, "dates")
		if err != nil {
			respondError(c, err)
			return
		}

		res, err := b.Unbook(c.Request.Context(), p, c.Param("id"), dates)
		if err != nil {
			respondError(c, err)
			return
		}
		msg := "dates unbooked successfully"
		if res.Removed == 0 {
			msg = "no booked dates matched"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, msg))
	}
}
