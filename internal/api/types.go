package api

import (
	"github.com/gin-gonic/gin"

	"github.com/selera-app/backend/internal/middleware"
)

// pageContext merges handler data with the fields every template needs:
// the current user and the CSRF token for form posts.
func pageContext(c *gin.Context, data gin.H) gin.H {
	out := gin.H{}
	for k, v := range data {
		out[k] = v
	}

	if _, username, ok := middleware.CurrentUser(c); ok {
		out["current_user"] = username
		out["authenticated"] = true
	} else {
		out["authenticated"] = false
	}

	out["csrf_token"] = ""
	if token, ok := c.Get(middleware.ContextCSRFToken); ok {
		out["csrf_token"] = token
	}
	return out
}
