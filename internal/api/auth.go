package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/internal/middleware"
	"github.com/selera-app/backend/internal/service"
)

// sessionMaxAge matches the token lifetime.
const sessionMaxAge = 24 * 60 * 60

// AuthHandler renders the login/register pages and manages the session
// cookie.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.GET("/register", h.RegisterPage)
	router.POST("/register", h.Register)
	router.GET("/logout", h.Logout)
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", pageContext(c, gin.H{
		"next": c.Query("next"),
	}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, token, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", pageContext(c, gin.H{
			"error": "Invalid username or password",
			"next":  c.PostForm("next"),
		}))
		return
	}

	setSessionCookie(c, token)
	log.Info().Str("username", user.Username).Msg("user logged in")

	next := c.PostForm("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", pageContext(c, nil))
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	user, err := h.authService.Register(c.Request.Context(), username, email, password)
	if err != nil {
		status := http.StatusBadRequest
		msg := err.Error()
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			status = http.StatusConflict
		}
		c.HTML(status, "register.html", pageContext(c, gin.H{"error": msg}))
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", pageContext(c, gin.H{
			"error": "Registration succeeded but login failed, please sign in",
		}))
		return
	}

	setSessionCookie(c, token)
	log.Info().Str("username", user.Username).Msg("user registered")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, sessionMaxAge, "/", "", false, true)
}
