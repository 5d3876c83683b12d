package response

import "github.com/gin-gonic/gin"

// Error codes shared across handlers. Upload-protocol success bodies are
// fixed by the client contract and returned raw; failures all use this
// envelope so callers always get a machine-readable kind plus a message.

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails carries structured diagnostics, e.g. received vs total
// chunk counts on an incomplete upload.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
