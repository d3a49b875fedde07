package main

import (
	"errors"
	"ims/src/db"
	"ims/src/models"
	"ims/src/types"
	"ims/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bookingRoutes exposes the two transactional operations of the engine.
func bookingRoutes(g *gin.Engine) {
	g.
		POST("/book/", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := utils.BookItem(&body)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": errorMessage(err)})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"message":           "Booking successful",
				"booking_reference": booking.Reference.String(),
			})
		}).
		POST("/cancel/", func(ctx *gin.Context) {
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reference, err := uuid.Parse(body.Reference)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.CancelBooking(reference); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": errorMessage(err)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
		})
}

// Bookings are created only by the booking transaction, so the generic
// surface is read plus delete; delete routes through the cancellation
// transaction to keep the counters honest.
func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			db := db.GetDb()
			var bookings []models.Booking
			err := db.
				Model(&models.Booking{}).
				Preload("Member").
				Preload("Inventory").
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			for i := range bookings {
				fillBookingNames(&bookings[i])
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				Preload("Member").
				Preload("Inventory").
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": string(types.ErrBookingNotFound)})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			fillBookingNames(&booking)
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		DELETE("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": string(types.ErrBookingNotFound)})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if err := utils.CancelBooking(booking.Reference); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": errorMessage(err)})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func fillBookingNames(booking *models.Booking) {
	if booking.Member != nil {
		booking.MemberName = booking.Member.Name
	}
	if booking.Inventory != nil {
		booking.InventoryTitle = booking.Inventory.Title
	}
}

func statusForError(err error) int {
	switch types.Code(err) {
	case types.ErrMemberNotFound, types.ErrInventoryNotFound, types.ErrBookingNotFound:
		return http.StatusNotFound
	case types.ErrBookingLimit, types.ErrOutOfStock:
		return http.StatusBadRequest
	case "":
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func errorMessage(err error) string {
	if code := types.Code(err); code != "" {
		return string(code)
	}
	return "Error while processing request"
}
