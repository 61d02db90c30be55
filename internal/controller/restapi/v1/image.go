package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andreyxaxa/image-vault/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// @Summary  	Upload image
// @Description Stores the blob in S3 and the metadata row in postgres
// @Tags 		images
// @Accept 		mpfd
// @Produce 	json
// @Param 		file  formData file   true  "Image file"
// @Param 		owner formData string false "Owner label, defaults to anon"
// @Success 	201 {object} response.Image
// @Failure 	400 {object} response.Error "Missing or empty file"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images [post]
func (r *V1) uploadImage(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "file is required")
	}

	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "file is empty")
	}

	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	image, err := r.img.Upload(ctx.UserContext(), fileReader, file.Filename, ctx.FormValue("owner"), file.Size)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidRequest) {
			return errorResponse(ctx, http.StatusBadRequest, "file is empty")
		}
		r.logger.Error(err, "restapi - v1 - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	resp := response.Image{
		ID:       image.ID.String(),
		FileName: image.FileName,
		Owner:    image.Owner,
	}

	return ctx.Status(http.StatusCreated).JSON(resp)
}

// @Summary 	Download image
// @Description Returns the blob with attachment disposition and the original file name
// @Tags 		images
// @Produce 	application/octet-stream
// @Param 		id path string true "Image ID(uuid)"
// @Success 	200 {file} 	binary
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images/{id} [get]
func (r *V1) downloadImage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	image, data, contentType, err := r.img.Fetch(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - downloadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, image.FileName))

	return ctx.Send(data)
}

// @Summary 	Update image metadata
// @Description Partial update of file_name and/or owner; the blob is untouched
// @Tags 		images
// @Accept 		json
// @Param 		id 	  path string 			true "Image ID(uuid)"
// @Param 		patch body dto.UpdateImage 	true "Fields to change"
// @Success 	200
// @Failure 	400 {object} response.Error "Invalid ID or empty patch"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images/{id} [patch]
func (r *V1) updateImage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	var patch dto.UpdateImage
	if err := ctx.BodyParser(&patch); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid body")
	}

	err = r.img.Update(ctx.UserContext(), id, patch)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidRequest) {
			return errorResponse(ctx, http.StatusBadRequest, "no valid data provided for update")
		}
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - updateImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.SendStatus(http.StatusOK)
}

// @Summary 	Delete image
// @Description Deletes the blob, then the metadata row; unknown ids succeed
// @Tags 		images
// @Param		id path string true "Image ID(uuid)"
// @Success		200 "Deleted"
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images/{id} [delete]
func (r *V1) deleteImage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	err = r.img.Delete(ctx.UserContext(), id)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - deleteImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.SendStatus(http.StatusOK)
}

// @Summary 	View image
// @Description Minimal HTML page embedding the image
// @Tags 		images
// @Produce 	html
// @Param 		id path string true "Image ID(uuid)"
// @Success 	200 {string} string "HTML page"
// @Failure 	400 {object} response.Error "Invalid ID"
// @Router 		/images/{id}/view [get]
func (r *V1) viewImage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	return ctx.SendString(fmt.Sprintf(`<img src="/images/%s" alt="image">`, id))
}
