package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/config"
	"github.com/selera-app/backend/internal/cache"
	"github.com/selera-app/backend/internal/metrics"
	"github.com/selera-app/backend/internal/models"
)

const (
	defaultSpoonacularURL = "https://api.spoonacular.com"
	defaultMealDBURL      = "https://www.themealdb.com/api/json/v1/1"
)

// SearchOptions narrow a western catalog search.
type SearchOptions struct {
	Number  int
	MaxTime string
	Diet    string
}

func (o SearchOptions) number() int {
	if o.Number <= 0 {
		return 5
	}
	return o.Number
}

// CatalogService talks to the external recipe catalogs. Every search
// degrades to an empty (or curated fallback) result set on failure; only
// detail lookups surface errors, because the recipe page cannot render
// without one.
type CatalogService struct {
	spoonacularKey string
	spoonacularURL string
	mealDBURL      string
	client         *http.Client
	cache          *cache.Cache
}

// NewCatalogService creates a catalog service. The cache may be nil.
func NewCatalogService(cfg *config.Config, c *cache.Cache) *CatalogService {
	return &CatalogService{
		spoonacularKey: cfg.SpoonacularKey,
		spoonacularURL: defaultSpoonacularURL,
		mealDBURL:      defaultMealDBURL,
		client:         &http.Client{Timeout: 5 * time.Second},
		cache:          c,
	}
}

// SearchWestern fetches western recipes by name from the Spoonacular API.
func (s *CatalogService) SearchWestern(ctx context.Context, query string, opts SearchOptions) []RecipeCard {
	params := url.Values{}
	params.Set("apiKey", s.spoonacularKey)
	params.Set("query", query)
	params.Set("number", fmt.Sprint(opts.number()))
	params.Set("addRecipeInformation", "true")
	params.Set("instructionsRequired", "true")
	params.Set("type", "main course")
	if opts.MaxTime != "" {
		params.Set("maxReadyTime", opts.MaxTime)
	}
	if opts.Diet != "" {
		params.Set("diet", opts.Diet)
	}

	var payload struct {
		Results []struct {
			ID    json.Number `json:"id"`
			Title string      `json:"title"`
			Image string      `json:"image"`
		} `json:"results"`
	}

	key := fmt.Sprintf("catalog:western:name:%s:%s:%s:%d", query, opts.MaxTime, opts.Diet, opts.number())
	err := s.cache.Aside(ctx, key, &payload, cache.DefaultTTL, func() error {
		return s.getJSON(ctx, "spoonacular", s.spoonacularURL+"/recipes/complexSearch?"+params.Encode(), &payload)
	})
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("spoonacular search failed")
		return nil
	}

	cards := make([]RecipeCard, 0, len(payload.Results))
	for _, r := range payload.Results {
		cards = append(cards, RecipeCard{
			ID:     r.ID.String(),
			Title:  r.Title,
			Source: models.SourceSpoonacular,
			Image:  imageOrDefault(r.Image),
		})
	}
	return cards
}

// SearchWesternByIngredients fetches western recipes matching a set of
// ingredients.
func (s *CatalogService) SearchWesternByIngredients(ctx context.Context, ingredients []string, opts SearchOptions) []RecipeCard {
	params := url.Values{}
	params.Set("apiKey", s.spoonacularKey)
	params.Set("ingredients", strings.Join(ingredients, ","))
	params.Set("number", fmt.Sprint(opts.number()))
	params.Set("ranking", "1")
	if opts.MaxTime != "" {
		params.Set("maxReadyTime", opts.MaxTime)
	}
	if opts.Diet != "" {
		params.Set("diet", opts.Diet)
	}

	var payload []struct {
		ID    json.Number `json:"id"`
		Title string      `json:"title"`
		Image string      `json:"image"`
	}

	key := "catalog:western:ingredients:" + strings.Join(ingredients, ",")
	err := s.cache.Aside(ctx, key, &payload, cache.DefaultTTL, func() error {
		return s.getJSON(ctx, "spoonacular", s.spoonacularURL+"/recipes/findByIngredients?"+params.Encode(), &payload)
	})
	if err != nil {
		log.Error().Err(err).Msg("spoonacular ingredient search failed")
		return nil
	}

	cards := make([]RecipeCard, 0, len(payload))
	for _, r := range payload {
		cards = append(cards, RecipeCard{
			ID:     r.ID.String(),
			Title:  r.Title,
			Source: models.SourceSpoonacular,
			Image:  imageOrDefault(r.Image),
		})
	}
	return cards
}

type mealDBMeal map[string]string

// SearchArchipelago fetches recipes by name from TheMealDB, filtered by
// region when one is given. The curated fallback set covers API misses and
// outages.
func (s *CatalogService) SearchArchipelago(ctx context.Context, query, region string, number int) []RecipeCard {
	if number <= 0 {
		number = 5
	}
	query = strings.ToLower(strings.TrimSpace(query))

	var payload struct {
		Meals []mealDBMeal `json:"meals"`
	}

	key := fmt.Sprintf("catalog:mealdb:%s", query)
	err := s.cache.Aside(ctx, key, &payload, cache.DefaultTTL, func() error {
		return s.getJSON(ctx, "themealdb", s.mealDBURL+"/search.php?s="+url.QueryEscape(query), &payload)
	})
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("themealdb search failed, using fallback set")
		return fallbackMatches(query, region, number)
	}

	meals := payload.Meals
	if region != "" {
		meals = filterMealsByRegion(meals, region)
	}

	cards := make([]RecipeCard, 0, number)
	for _, m := range meals {
		cards = append(cards, RecipeCard{
			ID:     m["idMeal"],
			Title:  m["strMeal"],
			Source: models.SourceMealDB,
			Image:  imageOrDefault(m["strMealThumb"]),
		})
		if len(cards) >= number {
			break
		}
	}

	if len(cards) == 0 {
		return fallbackMatches(query, region, number)
	}
	return cards
}

func filterMealsByRegion(meals []mealDBMeal, region string) []mealDBMeal {
	region = strings.ToLower(region)
	var out []mealDBMeal
	for _, m := range meals {
		if strings.Contains(strings.ToLower(m["strArea"]), region) ||
			strings.Contains(strings.ToLower(m["strCategory"]), region) ||
			strings.Contains(strings.ToLower(m["strMeal"]), region) {
			out = append(out, m)
		}
	}
	return out
}

// WesternDetail fetches full information for a Spoonacular recipe.
func (s *CatalogService) WesternDetail(ctx context.Context, id string) (*RecipeDetail, error) {
	params := url.Values{}
	params.Set("apiKey", s.spoonacularKey)

	var payload struct {
		ID                  json.Number `json:"id"`
		Title               string      `json:"title"`
		Image               string      `json:"image"`
		Instructions        string      `json:"instructions"`
		ExtendedIngredients []struct {
			Original string `json:"original"`
		} `json:"extendedIngredients"`
	}

	key := "catalog:western:detail:" + id
	err := s.cache.Aside(ctx, key, &payload, cache.DefaultTTL, func() error {
		return s.getJSON(ctx, "spoonacular", s.spoonacularURL+"/recipes/"+url.PathEscape(id)+"/information?"+params.Encode(), &payload)
	})
	if err != nil {
		return nil, fmt.Errorf("spoonacular detail for %s: %w", id, err)
	}

	ingredients := make([]string, 0, len(payload.ExtendedIngredients))
	for _, ing := range payload.ExtendedIngredients {
		ingredients = append(ingredients, ing.Original)
	}

	instructions := payload.Instructions
	if instructions == "" {
		instructions = "No instructions available."
	}

	return &RecipeDetail{
		ID:           payload.ID.String(),
		Title:        payload.Title,
		Source:       models.SourceSpoonacular,
		Image:        imageOrDefault(payload.Image),
		Ingredients:  ingredients,
		Instructions: SanitizeHTML(instructions),
	}, nil
}

// MealDBDetail fetches full information for a TheMealDB recipe. The API
// spreads ingredients over strIngredient1..20 paired with strMeasure1..20.
func (s *CatalogService) MealDBDetail(ctx context.Context, id string) (*RecipeDetail, error) {
	var payload struct {
		Meals []mealDBMeal `json:"meals"`
	}

	key := "catalog:mealdb:detail:" + id
	err := s.cache.Aside(ctx, key, &payload, cache.DefaultTTL, func() error {
		return s.getJSON(ctx, "themealdb", s.mealDBURL+"/lookup.php?i="+url.QueryEscape(id), &payload)
	})
	if err != nil {
		return nil, fmt.Errorf("themealdb detail for %s: %w", id, err)
	}
	if len(payload.Meals) == 0 {
		return nil, fmt.Errorf("themealdb recipe %s not found", id)
	}

	meal := payload.Meals[0]
	var ingredients []string
	for i := 1; i <= 20; i++ {
		ingredient := strings.TrimSpace(meal[fmt.Sprintf("strIngredient%d", i)])
		if ingredient == "" {
			continue
		}
		measure := strings.TrimSpace(meal[fmt.Sprintf("strMeasure%d", i)])
		ingredients = append(ingredients, strings.TrimSpace(measure+" "+ingredient))
	}

	instructions := meal["strInstructions"]
	if instructions == "" {
		instructions = "No instructions available."
	}

	return &RecipeDetail{
		ID:           id,
		Title:        meal["strMeal"],
		Source:       models.SourceMealDB,
		Image:        imageOrDefault(meal["strMealThumb"]),
		Region:       meal["strArea"],
		Ingredients:  ingredients,
		Instructions: SanitizeHTML(instructions),
	}, nil
}

func (s *CatalogService) getJSON(ctx context.Context, api, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ExternalRequestsTotal.WithLabelValues(api, "error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.ExternalRequestsTotal.WithLabelValues(api, "error").Inc()
		return fmt.Errorf("%s returned status %d", api, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.ExternalRequestsTotal.WithLabelValues(api, "error").Inc()
		return fmt.Errorf("failed to decode response: %w", err)
	}

	metrics.ExternalRequestsTotal.WithLabelValues(api, "ok").Inc()
	return nil
}

func imageOrDefault(img string) string {
	if img == "" {
		return DefaultRecipeImage
	}
	return img
}

// SetBaseURLs overrides the catalog endpoints; used by tests.
func (s *CatalogService) SetBaseURLs(spoonacular, mealdb string) {
	if spoonacular != "" {
		s.spoonacularURL = spoonacular
	}
	if mealdb != "" {
		s.mealDBURL = mealdb
	}
}
