package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CSRFCookie holds the double-submit token. It is readable by the page
// scripts so they can echo it back in the header.
const (
	CSRFCookie = "selera_csrf"
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"
)

// ContextCSRFToken exposes the token to template rendering.
const ContextCSRFToken = "csrf_token"

func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CSRF implements double-submit cookie protection. Safe methods ensure a
// token cookie exists; mutating methods must echo it via header or form
// field.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(CSRFCookie)
		if err != nil || cookie == "" {
			token, genErr := newCSRFToken()
			if genErr != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetCookie(CSRFCookie, token, 86400, "/", "", false, false)
			cookie = token
		}
		c.Set(ContextCSRFToken, cookie)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sent := c.GetHeader(CSRFHeader)
		if sent == "" {
			sent = c.PostForm(CSRFField)
		}
		if sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(cookie)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid csrf token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
