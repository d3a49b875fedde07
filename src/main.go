package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"time"

	"ims/src/boot"
	"ims/src/config"
	"ims/src/middlewares"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const apiPrefix string = "/api"

var calendarDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	return err == nil
}

var stampDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, format := range []string{time.RFC3339, config.TIME_PARSE_FORMAT, config.DATE_PARSE_FORMAT} {
		if _, err := time.Parse(format, value); err == nil {
			return true
		}
	}
	return false
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("calendardate", calendarDateValidatorFunc)
		v.RegisterValidation("stampdate", stampDateValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Inventory Management API!",
			"endpoints": gin.H{
				"book":             "/book/",
				"cancel_booking":   "/cancel/",
				"upload_inventory": "/upload-inventory/",
				"upload_members":   "/upload-members/",
				"inventory":        "/api/inventory",
				"members":          "/api/members",
				"bookings":         "/api/bookings",
			},
		})
	})
	return router
}

func apiGroup(g *gin.Engine) *gin.RouterGroup {
	api := g.Group(apiPrefix)
	return api
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	if config.API_ENV == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env file found: %s\n", err.Error())
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if config.API_ENV == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Content-Type")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	registerValidators()

	bookingRoutes(router)
	uploadRoutes(router)

	api := apiGroup(router)
	inventoryHandlers(api)
	memberHandlers(api)
	bookingHandlers(api)

	if err := router.Run(config.GetServerAddr()); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
