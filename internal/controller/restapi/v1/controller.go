package v1

import (
	"github.com/andreyxaxa/image-vault/internal/usecase"
	"github.com/andreyxaxa/image-vault/pkg/logger"
)

type V1 struct {
	img    usecase.ImageUseCase
	logger logger.Interface
}
