package main

import (
	"errors"
	"ims/src/config"
	"ims/src/db"
	"ims/src/models"
	"ims/src/types"
	"ims/src/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func inventoryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/inventory", func(ctx *gin.Context) {
			db := db.GetDb()
			var items []models.Inventory
			if err := db.Model(&models.Inventory{}).Find(&items).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
		}).
		GET("/inventory/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var item models.Inventory
			if err := db.
				Model(&models.Inventory{}).
				Where(&models.Inventory{ID: params.ID}).
				First(&item).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": string(types.ErrInventoryNotFound)})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": item})
		}).
		POST("/inventory", func(ctx *gin.Context) {
			var body types.CreateInventoryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			expiration, err := time.Parse(config.DATE_PARSE_FORMAT, body.ExpirationDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			item := models.Inventory{
				Title:          body.Title,
				Description:    body.Description,
				RemainingCount: body.RemainingCount,
				ExpirationDate: expiration,
			}
			db := db.GetDb()
			if err := db.Create(&item).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": item})
		}).
		PUT("/inventory/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateInventoryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// remaining_count is owned by the booking engine and never
			// updated through the generic surface.
			updates := map[string]any{}
			if body.Title != nil {
				updates["title"] = *body.Title
			}
			if body.Description != nil {
				updates["description"] = *body.Description
			}
			if body.ExpirationDate != nil {
				expiration, err := time.Parse(config.DATE_PARSE_FORMAT, *body.ExpirationDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["expiration_date"] = expiration
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Inventory{}).
				Where(&models.Inventory{ID: params.ID}).
				Updates(updates)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": string(types.ErrInventoryNotFound)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Inventory updated successfully"})
		}).
		DELETE("/inventory/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := utils.DeleteInventoryItem(params.ID); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": errorMessage(err)})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
