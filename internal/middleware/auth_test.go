package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// stubValidator accepts exactly one token.
type stubValidator struct {
	token  string
	claims *TokenClaims
}

func (v *stubValidator) ValidateToken(token string) (*TokenClaims, error) {
	if token == v.token {
		return v.claims, nil
	}
	return nil, errors.New("invalid token")
}

func newAuthRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/page", RequireAuth(validator), func(c *gin.Context) {
		_, username, _ := CurrentUser(c)
		c.String(http.StatusOK, username)
	})
	r.GET("/api", RequireAuthJSON(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/open", OptionalAuth(validator), func(c *gin.Context) {
		_, _, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	return r
}

func validStub() *stubValidator {
	return &stubValidator{
		token:  "good-token",
		claims: &TokenClaims{UserID: uuid.New(), Username: "alice"},
	}
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	router := newAuthRouter(validStub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestRequireAuthAcceptsCookie(t *testing.T) {
	router := newAuthRouter(validStub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good-token"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRequireAuthJSONRejectsAnonymous(t *testing.T) {
	router := newAuthRouter(validStub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication required")
}

func TestRequireAuthJSONAcceptsBearer(t *testing.T) {
	router := newAuthRouter(validStub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthJSONRejectsBadToken(t *testing.T) {
	router := newAuthRouter(validStub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	router := newAuthRouter(validStub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good-token"})
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}
