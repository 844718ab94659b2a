package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interaction kinds
const (
	InteractionLike = "like"
	InteractionSave = "save"
)

// Interaction records a user's like or save of a recipe. The composite
// unique index is the idempotence guarantee for the toggle endpoint: a
// rapid double submission cannot create two rows for the same tuple.
type Interaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_interaction_tuple;index" json:"user_id"`
	RecipeSource string    `gorm:"size:50;not null;uniqueIndex:idx_interaction_tuple" json:"recipe_source"`
	RecipeID     string    `gorm:"size:100;not null;uniqueIndex:idx_interaction_tuple" json:"recipe_id"`
	Kind         string    `gorm:"size:20;not null;uniqueIndex:idx_interaction_tuple" json:"kind"`
}

func (Interaction) TableName() string {
	return "interactions"
}

func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ValidKind reports whether s names a supported interaction kind.
func ValidKind(s string) bool {
	return s == InteractionLike || s == InteractionSave
}
