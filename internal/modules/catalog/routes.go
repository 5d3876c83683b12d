package catalog

import "github.com/gin-gonic/gin"

// RegisterRoutes registers catalog reads under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/image/:image_id", h.GetImageFile)
	r.GET("/images", h.ListImages)
	r.GET("/gear", h.ListGear)
	r.GET("/celestial-objects", h.ListCelestialObjects)
	r.GET("/sessions", h.ListSessions)
	r.GET("/locations", h.ListLocations)
}
