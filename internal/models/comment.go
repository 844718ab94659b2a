package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is append-only; there is no edit or delete operation.
type Comment struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RecipeSource string    `gorm:"size:50;not null;index:idx_comment_recipe" json:"recipe_source"`
	RecipeID     string    `gorm:"size:100;not null;index:idx_comment_recipe" json:"recipe_id"`
	User         User      `gorm:"foreignKey:UserID" json:"user"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
