package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/selera-app/backend/internal/models"
)

// ErrRecipeNotFound is returned when no recipe exists for a (source, id).
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeService owns locally submitted recipes and resolves recipe details
// across all sources.
type RecipeService struct {
	db      *gorm.DB
	catalog *CatalogService
}

func NewRecipeService(db *gorm.DB, catalog *CatalogService) *RecipeService {
	return &RecipeService{db: db, catalog: catalog}
}

// Create validates and stores a user-submitted recipe. Instructions are
// sanitized, the search embedding is derived from title and ingredients.
func (s *RecipeService) Create(ctx context.Context, recipe *models.UserRecipe) error {
	if strings.TrimSpace(recipe.Title) == "" {
		return errors.New("title is required")
	}
	if len(recipe.Ingredients) == 0 {
		return errors.New("ingredients are required")
	}
	if len(recipe.Instructions) == 0 {
		return errors.New("instructions are required")
	}
	if recipe.Cuisine == "" {
		return errors.New("cuisine is required")
	}
	if recipe.Cuisine != "indonesian" {
		// Region only makes sense for archipelago cuisine
		recipe.Region = ""
	}

	for i, step := range recipe.Instructions {
		recipe.Instructions[i] = SanitizeHTML(step)
	}
	recipe.Embedding = GenerateEmbedding(recipe.Title + " " + strings.Join(recipe.Ingredients, " "))

	return s.db.WithContext(ctx).Create(recipe).Error
}

// Get fetches a user recipe by id.
func (s *RecipeService) Get(ctx context.Context, id string) (*models.UserRecipe, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user recipe id %q", ErrRecipeNotFound, id)
	}

	var recipe models.UserRecipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Search finds user recipes for a query. On postgres results are ordered
// by embedding distance; on other dialects a title LIKE keeps tests and
// development databases working.
func (s *RecipeService) Search(ctx context.Context, query string, limit int) ([]RecipeCard, error) {
	if limit <= 0 {
		limit = 5
	}

	var recipes []models.UserRecipe
	q := s.db.WithContext(ctx).Limit(limit)

	if query != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(query)
			q = q.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(query) + "%"
			q = q.Where("LOWER(title) LIKE ?", like)
		}
	}

	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("user recipe search failed: %w", err)
	}

	cards := make([]RecipeCard, 0, len(recipes))
	for i := range recipes {
		cards = append(cards, userRecipeCard(&recipes[i]))
	}
	return cards, nil
}

// List returns up to limit user recipes, newest first.
func (s *RecipeService) List(ctx context.Context, limit int) ([]RecipeCard, error) {
	if limit <= 0 {
		limit = 5
	}

	var recipes []models.UserRecipe
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&recipes).Error; err != nil {
		return nil, err
	}

	cards := make([]RecipeCard, 0, len(recipes))
	for i := range recipes {
		cards = append(cards, userRecipeCard(&recipes[i]))
	}
	return cards, nil
}

// Detail resolves a recipe from any source to the shape the recipe page
// renders.
func (s *RecipeService) Detail(ctx context.Context, source, id string) (*RecipeDetail, error) {
	switch source {
	case models.SourceSpoonacular:
		return s.catalog.WesternDetail(ctx, id)
	case models.SourceMealDB:
		return s.catalog.MealDBDetail(ctx, id)
	case models.SourceFallback:
		if d := FallbackDetail(id); d != nil {
			return d, nil
		}
		return nil, ErrRecipeNotFound
	case models.SourceUser:
		recipe, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &RecipeDetail{
			ID:           recipe.ID.String(),
			Title:        recipe.Title,
			Source:       models.SourceUser,
			Image:        imageOrDefault(recipe.ImageURL),
			Region:       recipe.Region,
			Ingredients:  recipe.Ingredients,
			Instructions: strings.Join(recipe.Instructions, "\n"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrRecipeNotFound, source)
	}
}

// Card resolves the summary form of a recipe from any source; used when
// rendering a user's liked/saved lists from interaction rows.
func (s *RecipeService) Card(ctx context.Context, source, id string) (*RecipeCard, error) {
	detail, err := s.Detail(ctx, source, id)
	if err != nil {
		return nil, err
	}
	card := detail.Card()
	return &card, nil
}

func userRecipeCard(r *models.UserRecipe) RecipeCard {
	return RecipeCard{
		ID:     r.ID.String(),
		Title:  r.Title,
		Source: models.SourceUser,
		Image:  imageOrDefault(r.ImageURL),
	}
}
