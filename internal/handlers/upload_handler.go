package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/developia-II/marketplace-catalog/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 << 20 // 10MB

// ImageUploader stores an image and returns the URL it is served from.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadHandler struct {
	Uploader ImageUploader
	Timeout  time.Duration
}

func NewUploadHandler(uploader ImageUploader, timeout time.Duration) *UploadHandler {
	return &UploadHandler{Uploader: uploader, Timeout: timeout}
}

// UploadImage handles POST /api/v1/dashboard/uploads. The returned URL is
// what the dashboard stores in a product's image field.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse(utils.ErrUploadsDisabled.Error()))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("No file provided or file too large (Max 10MB)"))
		return
	}
	defer file.Close()

	// Sniff the real type from the first 512 bytes.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}

	contentType := http.DetectContentType(buffer[:n])
	fallbackExt, allowed := imageExtensions[contentType]
	if !allowed {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Unsupported file type. Please upload JPG, PNG, WEBP, or GIF"))
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = fallbackExt
	}
	safeFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	imageURL, err := h.Uploader.Upload(ctx, file, safeFilename)
	if err != nil {
		logrus.WithError(err).WithField("filename", safeFilename).Error("Image upload failed")
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("image upload failed"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Image uploaded successfully", gin.H{
		"url":  imageURL,
		"size": header.Size,
		"type": contentType,
	}))
}
