package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the upload protocol under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	chunked := r.Group("/chunk-upload")
	{
		chunked.POST("/init", h.InitUpload)
		chunked.POST("/chunk", h.UploadChunk)
		chunked.POST("/complete", h.CompleteUpload)
	}
	r.POST("/finalize-upload", h.FinalizeUpload)
}
