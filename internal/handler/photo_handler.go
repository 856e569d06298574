package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/service"
)

const photosField = "photos"

var errUploadTooLarge = apperror.TooLarge("Upload too large")

type PhotoHandler struct {
	photoSvc *service.PhotoService
	maxBytes int64
	log      logrus.FieldLogger
}

// NewPhotoHandler caps upload bodies at maxBytes; zero or less means no cap.
func NewPhotoHandler(ps *service.PhotoService, maxBytes int64, log logrus.FieldLogger) *PhotoHandler {
	return &PhotoHandler{photoSvc: ps, maxBytes: maxBytes, log: log}
}

func (h *PhotoHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/upload_photos", h.UploadPhotos)
	r.GET("/uploads/:filename", h.ServePhoto)
}

// UploadPhotos stores every file sent under the repeatable "photos" field.
func (h *PhotoHandler) UploadPhotos(c *gin.Context) {
	if h.maxBytes > 0 {
		if c.Request.ContentLength > h.maxBytes {
			respondError(c, h.log, errUploadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, h.log, errUploadTooLarge)
		return
	}
	if err != nil || len(form.File[photosField]) == 0 {
		respondError(c, h.log, apperror.InvalidInput("No photos uploaded"))
		return
	}

	files := form.File[photosField]
	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		fh := fh
		uploads = append(uploads, service.Upload{
			Filename: fh.Filename,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	urls, err := h.photoSvc.Save(c.Request.Context(), uploads)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Photos uploaded successfully!", "urls": urls})
}

// ServePhoto streams a stored photo back.
func (h *PhotoHandler) ServePhoto(c *gin.Context) {
	name := c.Param("filename")

	photo, err := h.photoSvc.Open(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer photo.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, photo.Size, contentType, photo, map[string]string{
		"Content-Disposition": "inline; filename=" + strconv.Quote(name),
	})
}
