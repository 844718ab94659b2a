package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/config"
	"github.com/selera-app/backend/internal/middleware"
	"github.com/selera-app/backend/internal/models"
	"github.com/selera-app/backend/internal/service"
)

// profilePerPage is the liked/saved page size on the profile.
const profilePerPage = 3

// PageHandler renders the server-side HTML pages.
type PageHandler struct {
	cfg          *config.Config
	catalog      *service.CatalogService
	weather      *service.WeatherService
	recommend    *service.RecommendService
	search       *service.SearchService
	recipes      *service.RecipeService
	interactions *service.InteractionService
	comments     *service.CommentService
	chat         *service.ChatService
	images       *service.ImageService
}

func NewPageHandler(
	cfg *config.Config,
	catalog *service.CatalogService,
	weather *service.WeatherService,
	recommend *service.RecommendService,
	search *service.SearchService,
	recipes *service.RecipeService,
	interactions *service.InteractionService,
	comments *service.CommentService,
	chat *service.ChatService,
	images *service.ImageService,
) *PageHandler {
	return &PageHandler{
		cfg:          cfg,
		catalog:      catalog,
		weather:      weather,
		recommend:    recommend,
		search:       search,
		recipes:      recipes,
		interactions: interactions,
		comments:     comments,
		chat:         chat,
		images:       images,
	}
}

func (h *PageHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	router.GET("/", h.Home)
	router.GET("/recipe/:source/:id", h.RecipeDetail)

	authed := router.Group("", middleware.RequireAuth(validator))
	authed.GET("/profile", h.Profile)
	authed.GET("/submit", h.SubmitPage)
	authed.POST("/submit", h.Submit)
	authed.GET("/chat", h.ChatPage)
}

// Home renders search results, weather, recommendations and related
// searches. A failed weather lookup degrades to a page without the
// weather section and an empty recommendation list.
func (h *PageHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()

	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		city = h.cfg.DefaultCity
	}
	query := strings.TrimSpace(c.Query("query"))
	cuisine := c.DefaultQuery("cuisine", "western")
	region := strings.TrimSpace(c.Query("region"))
	searchType := c.DefaultQuery("search_type", "name")

	weather, err := h.weather.ByCity(ctx, city)
	if err != nil {
		log.Warn().Err(err).Str("city", city).Msg("weather unavailable for home page")
	}

	var results []service.RecipeCard
	if query != "" {
		switch {
		case cuisine == "indonesian":
			results = h.catalog.SearchArchipelago(ctx, query, region, 6)
		case searchType == "ingredients":
			results = h.catalog.SearchWesternByIngredients(ctx, splitCSV(query), service.SearchOptions{
				Number:  6,
				MaxTime: c.Query("max_time"),
				Diet:    c.Query("diet"),
			})
		default:
			results = h.catalog.SearchWestern(ctx, query, service.SearchOptions{
				Number:  6,
				MaxTime: c.Query("max_time"),
				Diet:    c.Query("diet"),
			})
		}
		if userCards, err := h.recipes.Search(ctx, query, 3); err == nil {
			results = append(results, userCards...)
		}
		h.search.Record(ctx, query, cuisine, region)
	}

	recommendations := h.recommend.ForWeather(ctx, weather, region, 3)
	related := h.search.Related(ctx, weather)

	c.HTML(http.StatusOK, "index.html", pageContext(c, gin.H{
		"city":            city,
		"query":           query,
		"cuisine":         cuisine,
		"region":          region,
		"search_type":     searchType,
		"weather":         weather,
		"results":         results,
		"recommendations": recommendations,
		"related":         related,
	}))
}

// RecipeDetail renders one recipe with its comments and like/save state.
func (h *PageHandler) RecipeDetail(c *gin.Context) {
	ctx := c.Request.Context()
	source := c.Param("source")
	id := c.Param("id")

	detail, err := h.recipes.Detail(ctx, source, id)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.HTML(http.StatusNotFound, "error.html", pageContext(c, gin.H{
				"message": "Recipe not found",
			}))
			return
		}
		log.Error().Err(err).Str("source", source).Str("id", id).Msg("recipe detail failed")
		c.HTML(http.StatusBadGateway, "error.html", pageContext(c, gin.H{
			"message": "Recipe source is unavailable, try again later",
		}))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	comments, err := h.comments.ListPage(ctx, source, id, page)
	if err != nil {
		log.Error().Err(err).Msg("comment listing failed")
		comments = &service.CommentPage{Page: 1, Pages: 1}
	}

	userID, _, _ := middleware.CurrentUser(c)
	state, err := h.interactions.State(ctx, userID, source, id)
	if err != nil {
		state = &service.InteractionState{}
	}

	c.HTML(http.StatusOK, "recipe.html", pageContext(c, gin.H{
		"recipe":   detail,
		"comments": comments,
		"state":    state,
	}))
}

// Profile renders the user's liked and saved recipes, each independently
// paginated.
func (h *PageHandler) Profile(c *gin.Context) {
	_, username, _ := middleware.CurrentUser(c)

	likedPage, _ := strconv.Atoi(c.DefaultQuery("liked_page", "1"))
	savedPage, _ := strconv.Atoi(c.DefaultQuery("saved_page", "1"))

	liked, likedTotal := h.interactionCards(c, models.InteractionLike, likedPage)
	saved, savedTotal := h.interactionCards(c, models.InteractionSave, savedPage)

	c.HTML(http.StatusOK, "profile.html", pageContext(c, gin.H{
		"username":    username,
		"liked":       liked,
		"liked_page":  likedPage,
		"liked_pages": totalPages(likedTotal, profilePerPage),
		"saved":       saved,
		"saved_page":  savedPage,
		"saved_pages": totalPages(savedTotal, profilePerPage),
	}))
}

func (h *PageHandler) interactionCards(c *gin.Context, kind string, page int) ([]service.RecipeCard, int64) {
	ctx := c.Request.Context()
	uid, _, _ := middleware.CurrentUser(c)
	rows, total, err := h.interactions.ListByUser(ctx, uid, kind, page, profilePerPage)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("profile interaction listing failed")
		return nil, 0
	}

	cards := make([]service.RecipeCard, 0, len(rows))
	for _, row := range rows {
		card, err := h.recipes.Card(ctx, row.RecipeSource, row.RecipeID)
		if err != nil {
			// A vanished external recipe should not break the profile
			log.Warn().Err(err).Str("source", row.RecipeSource).Str("id", row.RecipeID).
				Msg("skipping unresolvable recipe on profile")
			continue
		}
		cards = append(cards, *card)
	}
	return cards, total
}

// SubmitPage renders the recipe submission form.
func (h *PageHandler) SubmitPage(c *gin.Context) {
	c.HTML(http.StatusOK, "submit_recipe.html", pageContext(c, nil))
}

// Submit stores a user recipe, uploading the optional image first.
func (h *PageHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, _ := middleware.CurrentUser(c)

	recipe := &models.UserRecipe{
		Title:        strings.TrimSpace(c.PostForm("title")),
		Ingredients:  splitLines(c.PostForm("ingredients")),
		Instructions: splitLines(c.PostForm("instructions")),
		Cuisine:      c.PostForm("cuisine"),
		Region:       strings.TrimSpace(c.PostForm("region")),
		UserID:       userID,
	}

	if header, err := c.FormFile("image"); err == nil && header != nil {
		url, err := h.images.UploadRecipeImage(ctx, header)
		if err != nil {
			c.HTML(http.StatusBadRequest, "submit_recipe.html", pageContext(c, gin.H{
				"error": "Image upload failed: " + err.Error(),
			}))
			return
		}
		recipe.ImageURL = url
	}

	if err := h.recipes.Create(ctx, recipe); err != nil {
		c.HTML(http.StatusBadRequest, "submit_recipe.html", pageContext(c, gin.H{
			"error": err.Error(),
		}))
		return
	}

	c.Redirect(http.StatusFound, "/recipe/"+models.SourceUser+"/"+recipe.ID.String())
}

// ChatPage renders the chat room seeded with recent history.
func (h *PageHandler) ChatPage(c *gin.Context) {
	messages, err := h.chat.Recent(c.Request.Context(), 50)
	if err != nil {
		log.Error().Err(err).Msg("chat history load failed")
	}
	c.HTML(http.StatusOK, "chat.html", pageContext(c, gin.H{
		"messages": messages,
	}))
}

// splitCSV turns a comma-separated ingredient query into a clean list.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitLines(s string) models.JSONBStringArray {
	var out models.JSONBStringArray
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func totalPages(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}
