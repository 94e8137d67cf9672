package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/internal/application"
	"github.com/jodisatria/photofolio-api/internal/interface/middleware"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/response"
)

type ImageHandler struct {
	Svc    *application.ImageService
	Logger *logrus.Logger
}

func NewImageHandler(svc *application.ImageService, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{Svc: svc, Logger: logger}
}

type deleteImageRequest struct {
	ID string `json:"id" binding:"required"`
}

// List GET /api/images
func (h *ImageHandler) List(c *gin.Context) {
	images, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(images))
	for _, img := range images {
		out = append(out, gin.H{
			"id":          img.ID,
			"name":        img.Name,
			"url":         img.URL,
			"uploaded_by": img.UploadedBy,
			"created_at":  img.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"images": out})
}

// Upload POST /api/images/upload, multipart field "image"
func (h *ImageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, apperror.New("Uploaded file must be an image.", http.StatusBadRequest))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	uid := c.GetString(middleware.CtxUserIDKey)
	img, err := h.Svc.Upload(c.Request.Context(), uid, f, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"img": gin.H{
		"id":   img.ID,
		"name": img.Name,
		"url":  img.URL,
	}})
}

// Delete DELETE /api/images/delete
func (h *ImageHandler) Delete(c *gin.Context) {
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), req.ID); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
