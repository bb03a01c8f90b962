package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/config"
)

// BasicAuth guards the debug routes with HTTP basic auth. Credentials come
// from configuration; when none are set the routes fail closed with a hint
// rather than serving unauthenticated.
func BasicAuth(admin config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !admin.Configured() {
			c.Header("WWW-Authenticate", `Basic realm="mitm-relay"`)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"detail": "Authentication not configured. Set ADMIN_USERNAME and ADMIN_PASSWORD.",
			})
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || !credentialsMatch(username, password, admin) {
			c.Header("WWW-Authenticate", `Basic realm="mitm-relay"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Incorrect username or password",
			})
			return
		}

		c.Next()
	}
}

func credentialsMatch(username, password string, admin config.AdminConfig) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
	return userOK && passOK
}
