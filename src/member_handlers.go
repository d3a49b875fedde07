package main

import (
	"errors"
	"ims/src/db"
	"ims/src/loader"
	"ims/src/models"
	"ims/src/types"
	"ims/src/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func memberHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/members", func(ctx *gin.Context) {
			db := db.GetDb()
			var members []models.Member
			if err := db.Model(&models.Member{}).Find(&members).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": members, "count": len(members)})
		}).
		GET("/members/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var member models.Member
			if err := db.
				Model(&models.Member{}).
				Where(&models.Member{ID: params.ID}).
				First(&member).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": string(types.ErrMemberNotFound)})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": member})
		}).
		POST("/members", func(ctx *gin.Context) {
			var body types.CreateMemberRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			joined := time.Now()
			if body.DateJoined != "" {
				ts, err := loader.ParseTimestamp(body.DateJoined)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				joined = ts
			}
			member := models.Member{
				Name:       body.Name,
				Surname:    body.Surname,
				DateJoined: joined,
			}
			db := db.GetDb()
			if err := db.Create(&member).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": member})
		}).
		PUT("/members/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateMemberRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// booking_count is owned by the booking engine and never
			// updated through the generic surface.
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Surname != nil {
				updates["surname"] = *body.Surname
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Member{}).
				Where(&models.Member{ID: params.ID}).
				Updates(updates)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": string(types.ErrMemberNotFound)})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Member updated successfully"})
		}).
		DELETE("/members/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := utils.DeleteMember(params.ID); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": errorMessage(err)})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
