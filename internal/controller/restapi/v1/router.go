package v1

import (
	"github.com/andreyxaxa/image-vault/internal/usecase"
	"github.com/andreyxaxa/image-vault/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewImageRoutes(router fiber.Router, img usecase.ImageUseCase, l logger.Interface) {
	r := &V1{img: img, logger: l}

	{
		// API
		router.Post("/images", r.uploadImage)
		router.Get("/images/:id", r.downloadImage)
		router.Patch("/images/:id", r.updateImage)
		router.Delete("/images/:id", r.deleteImage)

		// UI
		router.Get("/images/:id/view", r.viewImage)
	}
}
