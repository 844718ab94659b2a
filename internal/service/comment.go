package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selera-app/backend/internal/models"
)

// ErrEmptyComment is returned when a comment has no content left after
// sanitizing.
var ErrEmptyComment = errors.New("comment cannot be empty")

// CommentsPerPage is the page size on the recipe detail page.
const CommentsPerPage = 5

// CommentPage is one page of comments plus pagination info.
type CommentPage struct {
	Comments []models.Comment
	Page     int
	Pages    int
	Total    int64
}

// CommentService stores append-only recipe comments.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Create sanitizes and stores a comment. Empty content (before or after
// sanitizing) is rejected and creates no row.
func (s *CommentService) Create(ctx context.Context, userID uuid.UUID, source, recipeID, content string) (*models.Comment, error) {
	if err := validateRecipeIdentity(source, recipeID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(SanitizeHTML(content))
	if content == "" {
		return nil, ErrEmptyComment
	}

	comment := &models.Comment{
		Content:      content,
		UserID:       userID,
		RecipeSource: source,
		RecipeID:     recipeID,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListPage returns one page of a recipe's comments, newest first.
func (s *CommentService) ListPage(ctx context.Context, source, recipeID string, page int) (*CommentPage, error) {
	if page < 1 {
		page = 1
	}

	q := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("recipe_source = ? AND recipe_id = ?", source, recipeID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := q.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * CommentsPerPage).Limit(CommentsPerPage).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	pages := int((total + CommentsPerPage - 1) / CommentsPerPage)
	if pages < 1 {
		pages = 1
	}

	return &CommentPage{Comments: comments, Page: page, Pages: pages, Total: total}, nil
}
