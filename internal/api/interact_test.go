package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/selera-app/backend/internal/middleware"
	"github.com/selera-app/backend/internal/models"
	"github.com/selera-app/backend/internal/service"
	"github.com/selera-app/backend/internal/testhelpers"
)

type interactFixture struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

func newInteractFixture(t *testing.T) *interactFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	auth := service.NewAuthService(db, "test-secret")
	handler := NewInteractHandler(service.NewInteractionService(db), service.NewCommentService(db))

	router := gin.New()
	handler.RegisterRoutes(router.Group(""), auth, nil)
	return &interactFixture{db: db, router: router, auth: auth}
}

func (f *interactFixture) login(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()
	user, err := f.auth.Register(ctx, username, username+"@example.com", "password123")
	require.NoError(t, err)
	token, err := f.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func postForm(router *gin.Engine, path, token string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	router.ServeHTTP(w, req)
	return w
}

func TestInteractRequiresAuth(t *testing.T) {
	f := newInteractFixture(t)

	w := postForm(f.router, "/interact", "", url.Values{
		"source": {models.SourceMealDB}, "recipe_id": {"52772"}, "action": {"like"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var rows int64
	require.NoError(t, f.db.Model(&models.Interaction{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestInteractToggles(t *testing.T) {
	f := newInteractFixture(t)
	token := f.login(t, "alice")
	form := url.Values{
		"source": {models.SourceMealDB}, "recipe_id": {"52772"}, "action": {"like"},
	}

	w := postForm(f.router, "/interact", token, form)
	require.Equal(t, http.StatusOK, w.Code)

	var state service.InteractionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, int64(1), state.Likes)
	assert.True(t, state.UserLiked)

	w = postForm(f.router, "/interact", token, form)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, int64(0), state.Likes)
	assert.False(t, state.UserLiked)
}

func TestInteractRejectsUnknownAction(t *testing.T) {
	f := newInteractFixture(t)
	token := f.login(t, "alice")

	w := postForm(f.router, "/interact", token, url.Values{
		"source": {models.SourceMealDB}, "recipe_id": {"52772"}, "action": {"boost"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestCommentRequiresAuth(t *testing.T) {
	f := newInteractFixture(t)

	w := postForm(f.router, "/comment", "", url.Values{
		"source": {models.SourceMealDB}, "recipe_id": {"52772"}, "content": {"hello"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var rows int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestCommentRejectsEmpty(t *testing.T) {
	f := newInteractFixture(t)
	token := f.login(t, "alice")

	w := postForm(f.router, "/comment", token, url.Values{
		"source": {models.SourceMealDB}, "recipe_id": {"52772"}, "content": {"   "},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var rows int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestCommentRedirectsBack(t *testing.T) {
	f := newInteractFixture(t)
	token := f.login(t, "alice")

	w := postForm(f.router, "/comment", token, url.Values{
		"source": {models.SourceMealDB}, "recipe_id": {"52772"}, "content": {"lovely dish"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/recipe/themealdb/52772", w.Header().Get("Location"))

	var rows int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
