package upload

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"astrocat/internal/middleware"
	"astrocat/internal/pkg/response"
)

// CatalogWriter persists one finalize result as an atomic record graph and
// returns the new image id.
type CatalogWriter interface {
	Finalize(ctx context.Context, userID string, res *FinalizeResult) (string, error)
}

type Handler struct {
	service   *Service
	finalizer *Finalizer
	writer    CatalogWriter
}

func NewHandler(service *Service, finalizer *Finalizer, writer CatalogWriter) *Handler {
	return &Handler{service: service, finalizer: finalizer, writer: writer}
}

// InitUpload opens a chunked upload session.
// POST /chunk-upload/init
func (h *Handler) InitUpload(c *gin.Context) {
	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := h.service.Init(req.FileName, req.FileSize, req.FileType, req.UploadType, req.FileID, req.TotalChunks)
	if err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			response.Error(c, http.StatusBadRequest, "INVALID_CATEGORY", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INIT_FAILED", "failed to initialize upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadId": res.SessionID,
		"status":   "initialized",
	})
}

// UploadChunk receives one fragment of an open session.
// POST /chunk-upload/chunk (multipart: uploadId, chunkIndex, chunk)
func (h *Handler) UploadChunk(c *gin.Context) {
	uploadID := c.PostForm("uploadId")
	chunkIndex, err := strconv.Atoi(c.PostForm("chunkIndex"))
	if uploadID == "" || err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "uploadId and numeric chunkIndex are required")
		return
	}

	fh, err := c.FormFile("chunk")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "MISSING_CHUNK", ErrMissingChunk.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "MISSING_CHUNK", "failed to read chunk")
		return
	}
	defer f.Close()

	received, total, err := h.service.PutChunk(uploadID, chunkIndex, f)
	if err != nil {
		if errors.Is(err, ErrUnknownSession) {
			response.Error(c, http.StatusBadRequest, "UNKNOWN_UPLOAD", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", "failed to store chunk")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "chunk received",
		"chunkIndex":     chunkIndex,
		"receivedChunks": received,
		"totalChunks":    total,
	})
}

// CompleteUpload assembles a fully received session into its final file.
// POST /chunk-upload/complete
func (h *Handler) CompleteUpload(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := h.service.Complete(req.UploadID)
	if err != nil {
		var incomplete *IncompleteUploadError
		switch {
		case errors.Is(err, ErrUnknownSession):
			response.Error(c, http.StatusBadRequest, "UNKNOWN_UPLOAD", err.Error())
		case errors.As(err, &incomplete):
			response.ErrorWithDetails(c, http.StatusBadRequest, "INCOMPLETE_UPLOAD", err.Error(), gin.H{
				"receivedChunks": incomplete.Received,
				"totalChunks":    incomplete.Total,
			})
		default:
			response.Error(c, http.StatusInternalServerError, "ASSEMBLY_FAILED", "failed to assemble file")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "complete",
		"filePath": res.FilePath,
		"fileType": string(res.Category),
		"fileId":   res.FileID,
		"metadata": gin.H{
			"fileName": res.FileName,
			"mimeType": res.MimeType,
		},
	})
}

// FinalizeUpload reconciles the multipart finalize submission and persists
// the full record graph in one transaction.
// POST /finalize-upload
func (h *Handler) FinalizeUpload(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form expected")
		return
	}

	res, err := h.finalizer.Parse(form)
	if err != nil {
		var invalid *InvalidMetadataError
		if errors.As(err, &invalid) {
			response.Error(c, http.StatusBadRequest, "INVALID_METADATA", invalid.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
		return
	}

	imageID, err := h.writer.Finalize(c.Request.Context(), userID, res)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FINALIZATION_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"image_id": imageID,
	})
}
