package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/safatanc/feastly-core/injector"
	"github.com/safatanc/feastly-core/internal/infrastructures"
)

func main() {
	config := infrastructures.LoadConfig()
	infrastructures.ConfigureLogger(config.LOG_LEVEL)
	logger := infrastructures.GetLogger()

	app, err := injector.InitializeApplication()
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}

	router := fiber.New(fiber.Config{
		AppName:      "feastly-core",
		ReadTimeout:  time.Second * 60,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:        300,
	}))

	app.RegisterRoutes(router)

	logger.WithField("port", config.APP_PORT).Info("starting feastly-core")
	logger.Fatal(router.Listen(":" + config.APP_PORT))
}
