package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/selera-app/backend/internal/metrics"
	"github.com/selera-app/backend/internal/models"
)

// ErrInvalidInteraction flags a malformed recipe identity or kind. Handlers
// surface it as a JSON error field, never a 500.
var ErrInvalidInteraction = errors.New("invalid interaction")

// InteractionState is the post-toggle snapshot returned to the client.
type InteractionState struct {
	Likes     int64 `json:"likes"`
	Saves     int64 `json:"saves"`
	UserLiked bool  `json:"user_liked"`
	UserSaved bool  `json:"user_saved"`
}

// InteractionService toggles like/save rows. Counts are always row counts
// over the interactions table; there is no separate counter to drift. The
// composite unique index makes a rapid double submission idempotent: the
// second insert hits the conflict clause and changes nothing.
type InteractionService struct {
	db *gorm.DB
}

func NewInteractionService(db *gorm.DB) *InteractionService {
	return &InteractionService{db: db}
}

// Toggle flips the interaction row for (user, recipe, kind) and returns the
// updated aggregate state for the recipe.
func (s *InteractionService) Toggle(ctx context.Context, userID uuid.UUID, source, recipeID, kind string) (*InteractionState, error) {
	if err := validateRecipeIdentity(source, recipeID); err != nil {
		return nil, err
	}
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInteraction, kind)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_source = ? AND recipe_id = ? AND kind = ?",
			userID, source, recipeID, kind).Delete(&models.Interaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			// Toggled off
			metrics.InteractionsTotal.WithLabelValues(kind, "off").Inc()
			return nil
		}

		row := models.Interaction{
			UserID:       userID,
			RecipeSource: source,
			RecipeID:     recipeID,
			Kind:         kind,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		metrics.InteractionsTotal.WithLabelValues(kind, "on").Inc()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("interaction toggle failed: %w", err)
	}

	return s.State(ctx, userID, source, recipeID)
}

// State returns the aggregate counts for a recipe plus the caller's own
// liked/saved flags.
func (s *InteractionService) State(ctx context.Context, userID uuid.UUID, source, recipeID string) (*InteractionState, error) {
	if err := validateRecipeIdentity(source, recipeID); err != nil {
		return nil, err
	}

	state := &InteractionState{}
	db := s.db.WithContext(ctx).Model(&models.Interaction{})

	if err := db.Session(&gorm.Session{}).
		Where("recipe_source = ? AND recipe_id = ? AND kind = ?", source, recipeID, models.InteractionLike).
		Count(&state.Likes).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("recipe_source = ? AND recipe_id = ? AND kind = ?", source, recipeID, models.InteractionSave).
		Count(&state.Saves).Error; err != nil {
		return nil, err
	}

	if userID != uuid.Nil {
		var mine []models.Interaction
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_source = ? AND recipe_id = ?", userID, source, recipeID).
			Find(&mine).Error; err != nil {
			return nil, err
		}
		for _, i := range mine {
			switch i.Kind {
			case models.InteractionLike:
				state.UserLiked = true
			case models.InteractionSave:
				state.UserSaved = true
			}
		}
	}

	return state, nil
}

// ListByUser returns a page of a user's interactions of one kind, newest
// first, plus the total for pagination.
func (s *InteractionService) ListByUser(ctx context.Context, userID uuid.UUID, kind string, page, perPage int) ([]models.Interaction, int64, error) {
	if !models.ValidKind(kind) {
		return nil, 0, fmt.Errorf("%w: unknown action %q", ErrInvalidInteraction, kind)
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 3
	}

	q := s.db.WithContext(ctx).Model(&models.Interaction{}).
		Where("user_id = ? AND kind = ?", userID, kind)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Interaction
	if err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func validateRecipeIdentity(source, recipeID string) error {
	switch source {
	case models.SourceSpoonacular, models.SourceMealDB, models.SourceFallback, models.SourceUser:
	default:
		return fmt.Errorf("%w: unknown recipe source %q", ErrInvalidInteraction, source)
	}
	if strings.TrimSpace(recipeID) == "" {
		return fmt.Errorf("%w: missing recipe id", ErrInvalidInteraction)
	}
	return nil
}
