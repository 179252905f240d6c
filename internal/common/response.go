package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes the mutation envelope.
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SuccessID writes the mutation envelope with an assigned id.
func SuccessID(c *gin.Context, id any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
