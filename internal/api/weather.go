package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/internal/service"
)

// WeatherHandler serves the JSON endpoints the home page scripts call
// after the browser grants geolocation.
type WeatherHandler struct {
	weather   *service.WeatherService
	recommend *service.RecommendService
	search    *service.SearchService
}

func NewWeatherHandler(weather *service.WeatherService, recommend *service.RecommendService, search *service.SearchService) *WeatherHandler {
	return &WeatherHandler{weather: weather, recommend: recommend, search: search}
}

func (h *WeatherHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/weather-by-coords", h.WeatherByCoords)
	router.POST("/api/recommend-by-location", h.RecommendByLocation)
	router.GET("/api/suggest", h.Suggest)
}

type coordsRequest struct {
	Lat    float64 `json:"lat" binding:"required"`
	Lon    float64 `json:"lon" binding:"required"`
	Region string  `json:"region"`
}

// WeatherByCoords returns current conditions for the browser's position.
func (h *WeatherHandler) WeatherByCoords(c *gin.Context) {
	var req coordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	weather, err := h.weather.ByCoords(c.Request.Context(), req.Lat, req.Lon)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather lookup failed"})
		return
	}
	c.JSON(http.StatusOK, weather)
}

// RecommendByLocation returns ranked recommendations for the browser's
// position. A failed weather lookup still answers, with an empty
// recommendation list.
func (h *WeatherHandler) RecommendByLocation(c *gin.Context) {
	var req coordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	ctx := c.Request.Context()
	weather, err := h.weather.ByCoords(ctx, req.Lat, req.Lon)
	if err != nil {
		log.Warn().Err(err).Msg("weather unavailable for location recommendations")
	}

	cards := h.recommend.ForWeather(ctx, weather, req.Region, 3)
	if cards == nil {
		cards = []service.RecipeCard{}
	}
	c.JSON(http.StatusOK, gin.H{
		"weather":         weather,
		"recommendations": cards,
	})
}

// Suggest returns the related-search chips for the current conditions.
func (h *WeatherHandler) Suggest(c *gin.Context) {
	ctx := c.Request.Context()

	var weather *service.Weather
	if city := c.Query("city"); city != "" {
		w, err := h.weather.ByCity(ctx, city)
		if err == nil {
			weather = w
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": h.search.Related(ctx, weather),
	})
}
