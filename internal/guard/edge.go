package guard

import (
	"net/http"
	"strings"

	"github.com/XaidenLabs/myreliq/internal/cookies"
	"github.com/gin-gonic/gin"
)

var (
	authPaths      = []string{"/auth/login", "/auth/register"}
	protectedPaths = []string{"/dashboard", "/admin"}
)

// EdgeRedirect is the cheap fast-path filter in front of page routes. It
// checks only for the presence of the access cookie, never its validity;
// the guard tier remains the authority.
func EdgeRedirect() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/metrics") ||
			path == "/healthz" || path == "/readyz" {
			c.Next()
			return
		}

		hasAccessCookie := cookies.AccessToken(c) != ""

		if hasAccessCookie && hasPrefixAny(path, authPaths) {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}

		if !hasAccessCookie && hasPrefixAny(path, protectedPaths) {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

func hasPrefixAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
