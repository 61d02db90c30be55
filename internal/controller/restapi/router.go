package restapi

import (
	"github.com/andreyxaxa/image-vault/config"
	v1 "github.com/andreyxaxa/image-vault/internal/controller/restapi/v1"
	"github.com/andreyxaxa/image-vault/internal/usecase"
	"github.com/andreyxaxa/image-vault/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Image vault
// @version 1.0.0
// @host localhost:8080
func NewRouter(app *fiber.App, cfg *config.Config, img usecase.ImageUseCase, l logger.Interface) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	v1.NewImageRoutes(app, img, l)
}
