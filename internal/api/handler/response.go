package handler

import (
	"github.com/gin-gonic/gin"
)

// errorResponse sends a JSON error response with {detail: message} format.
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

// errorPage renders the HTML error view used by the debug routes.
func errorPage(c *gin.Context, status int, message string) {
	c.HTML(status, "error.tmpl", gin.H{"Message": message})
}

// relayError is the gateway-style error body returned to the original caller
// when forwarding fails. The reason string comes from the forward error
// taxonomy so callers can tell an unset target from an unreachable one.
func relayError(c *gin.Context, status int, reason, message string) {
	c.JSON(status, gin.H{
		"error":  message,
		"reason": reason,
	})
}

// noCache marks debug views as uncacheable.
func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
}
