package catalog

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"astrocat/internal/domain"
	"astrocat/internal/middleware"
	"astrocat/internal/pkg/response"
)

// Handler serves image bytes and the thin list-reads over the catalog.
type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GetImageFile streams the primary file of a catalogued image.
// GET /image/:image_id
func (h *Handler) GetImageFile(c *gin.Context) {
	userID := middleware.UserID(c)
	imageID := c.Param("image_id")

	var img domain.Image
	err := h.db.WithContext(c.Request.Context()).
		Where("image_id = ? AND user_id = ?", imageID, userID).
		First(&img).Error
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "image not found")
		return
	}

	data, err := os.ReadFile(img.FilePath)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "image file missing")
		return
	}

	c.Data(http.StatusOK, mimeForPath(img.FilePath), data)
}

// mimeForPath infers a content type from the extension; anything not
// recognized is served as JPEG.
func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// ListImages returns the caller's catalogued images.
// GET /images
func (h *Handler) ListImages(c *gin.Context) {
	var images []domain.Image
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", middleware.UserID(c)).
		Find(&images).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list images")
		return
	}
	response.Success(c, http.StatusOK, images)
}

// ListGear returns the caller's equipment.
// GET /gear
func (h *Handler) ListGear(c *gin.Context) {
	var gear []domain.Gear
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", middleware.UserID(c)).
		Find(&gear).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list gear")
		return
	}
	response.Success(c, http.StatusOK, gear)
}

// ListCelestialObjects returns the shared object reference list.
// GET /celestial-objects
func (h *Handler) ListCelestialObjects(c *gin.Context) {
	var objects []domain.CelestialObject
	if err := h.db.WithContext(c.Request.Context()).Find(&objects).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list celestial objects")
		return
	}
	response.Success(c, http.StatusOK, objects)
}

// ListSessions returns the caller's observing sessions.
// GET /sessions
func (h *Handler) ListSessions(c *gin.Context) {
	var sessions []domain.ObservingSession
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", middleware.UserID(c)).
		Find(&sessions).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list sessions")
		return
	}
	response.Success(c, http.StatusOK, sessions)
}

// ListLocations returns the caller's observing locations.
// GET /locations
func (h *Handler) ListLocations(c *gin.Context) {
	var locations []domain.Location
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", middleware.UserID(c)).
		Find(&locations).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list locations")
		return
	}
	response.Success(c, http.StatusOK, locations)
}
