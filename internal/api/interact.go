package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/internal/middleware"
	"github.com/selera-app/backend/internal/service"
)

// InteractHandler serves the like/save toggle and comment submission.
type InteractHandler struct {
	interactions *service.InteractionService
	comments     *service.CommentService
}

func NewInteractHandler(interactions *service.InteractionService, comments *service.CommentService) *InteractHandler {
	return &InteractHandler{interactions: interactions, comments: comments}
}

func (h *InteractHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, limiter *middleware.RateLimiter) {
	authed := router.Group("", middleware.RequireAuthJSON(validator))
	if limiter != nil {
		authed.Use(limiter.Middleware())
	}
	authed.POST("/interact", h.Interact)
	authed.POST("/comment", h.Comment)
}

// Interact toggles a like or save and returns the recipe's new state.
func (h *InteractHandler) Interact(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	source := c.PostForm("source")
	recipeID := c.PostForm("recipe_id")
	action := c.PostForm("action")

	state, err := h.interactions.Toggle(c.Request.Context(), userID, source, recipeID, action)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInteraction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("interaction toggle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "interaction failed"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Comment stores a comment and sends the browser back to the recipe page.
func (h *InteractHandler) Comment(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	source := c.PostForm("source")
	recipeID := c.PostForm("recipe_id")
	content := c.PostForm("content")

	_, err := h.comments.Create(c.Request.Context(), userID, source, recipeID, content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyComment) || errors.Is(err, service.ErrInvalidInteraction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("comment creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "comment failed"})
		return
	}

	c.Redirect(http.StatusFound, "/recipe/"+source+"/"+recipeID)
}
