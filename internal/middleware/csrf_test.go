package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CSRF())
	r.GET("/page", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/form", func(c *gin.Context) { c.String(http.StatusOK, "posted") })
	return r
}

func csrfCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == CSRFCookie {
			return cookie
		}
	}
	t.Fatal("csrf cookie not set")
	return nil
}

func TestCSRFIssuesCookieOnGet(t *testing.T) {
	router := newCSRFRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := csrfCookie(t, w)
	assert.Len(t, cookie.Value, 64)
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	router := newCSRFRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	router := newCSRFRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: strings.Repeat("a", 64)})
	req.Header.Set(CSRFHeader, strings.Repeat("b", 64))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFAcceptsHeaderToken(t *testing.T) {
	router := newCSRFRouter()
	token := strings.Repeat("a", 64)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: token})
	req.Header.Set(CSRFHeader, token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFAcceptsFormFieldToken(t *testing.T) {
	router := newCSRFRouter()
	token := strings.Repeat("a", 64)

	form := url.Values{CSRFField: {token}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: token})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
