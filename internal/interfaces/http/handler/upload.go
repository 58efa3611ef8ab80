package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"slices"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// UploadHandler accepts product image uploads
type UploadHandler struct {
	BaseHandler
	images *catalogapp.ImageService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(images *catalogapp.ImageService) *UploadHandler {
	return &UploadHandler{images: images}
}

// UploadImages godoc
// @ID           adminUploadImages
// @Summary      Upload product images
// @Description  Accepts JPEG, PNG or WebP up to 5MB each under the "files" field (or a single "file").
// @Description  With several files each is uploaded independently and failures are listed.
// @Tags         admin-uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        files formData file true "Images"
// @Success      201 {object} APIResponse[catalogapp.UploadImagesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/uploads/images [post]
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.HandleError(c, catalogapp.ErrFileNotFound)
		return
	}
	headers := slices.Concat(form.File["files"], form.File["file"])
	if len(headers) == 0 {
		h.HandleError(c, catalogapp.ErrFileNotFound)
		return
	}

	files := make([]catalogapp.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readImageFile(fh)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		files = append(files, f)
	}

	// a single file reports its own rejection
	if len(files) == 1 {
		url, err := h.images.UploadImage(c.Request.Context(), files[0])
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, catalogapp.UploadImagesResponse{URLs: []string{url}, Failed: []catalogapp.ImageUploadFailure{}})
		return
	}

	h.Created(c, h.images.UploadImages(c.Request.Context(), files))
}

// readImageFile loads an uploaded part. Oversized parts are not read so the
// size check can reject them without buffering.
func readImageFile(fh *multipart.FileHeader) (catalogapp.ImageFile, error) {
	f := catalogapp.ImageFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if fh.Size == 0 || fh.Size > catalogapp.MaxImageSize {
		return f, nil
	}

	src, err := fh.Open()
	if err != nil {
		return f, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	f.Data, err = io.ReadAll(src)
	if err != nil {
		return f, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return f, nil
}
