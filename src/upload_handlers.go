package main

import (
	"ims/src/loader"
	"ims/src/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func uploadRoutes(g *gin.Engine) {
	g.
		POST("/upload-inventory/", func(ctx *gin.Context) {
			file, err := ctx.FormFile("file")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
				return
			}
			if !strings.HasSuffix(file.Filename, ".csv") {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is not in CSV format"})
				return
			}
			f, err := file.Open()
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			defer f.Close()
			rows, skipped, err := loader.ParseInventory(f)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.CreateInventoryBatch(rows); err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"message":       "Inventory uploaded successfully",
				"rows_inserted": len(rows),
				"rows_skipped":  skipped,
			})
		}).
		POST("/upload-members/", func(ctx *gin.Context) {
			file, err := ctx.FormFile("file")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
				return
			}
			if !strings.HasSuffix(file.Filename, ".csv") {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is not in CSV format"})
				return
			}
			f, err := file.Open()
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			defer f.Close()
			rows, skipped, err := loader.ParseMembers(f)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.CreateMemberBatch(rows); err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"message":       "Members uploaded successfully",
				"rows_inserted": len(rows),
				"rows_skipped":  skipped,
			})
		})
}
