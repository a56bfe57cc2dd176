// Package cookies owns the transport of the two auth cookies. Both are
// HttpOnly, Secure, SameSite=Strict and scoped to the whole site.
package cookies

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "myreliq_access"
	RefreshCookie = "myreliq_refresh"
)

func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	set(c, AccessCookie, accessToken, int(accessTTL.Seconds()))
	set(c, RefreshCookie, refreshToken, int(refreshTTL.Seconds()))
}

// ClearAuthCookies overwrites both cookies with an empty value and an expired
// max-age, a deterministic logout signal to the browser.
func ClearAuthCookies(c *gin.Context) {
	set(c, AccessCookie, "", -1)
	set(c, RefreshCookie, "", -1)
}

func AccessToken(c *gin.Context) string {
	val, err := c.Cookie(AccessCookie)
	if err != nil {
		return ""
	}
	return val
}

func RefreshToken(c *gin.Context) string {
	val, err := c.Cookie(RefreshCookie)
	if err != nil {
		return ""
	}
	return val
}

func set(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
