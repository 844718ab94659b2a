package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchHistory aggregates identical searches; Count drives the related
// search suggestions on the home page.
type SearchHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Query     string    `gorm:"size:200;not null;index:idx_search_tuple" json:"query"`
	Cuisine   string    `gorm:"size:50;index:idx_search_tuple" json:"cuisine"`
	Region    string    `gorm:"size:100;index:idx_search_tuple" json:"region"`
	Count     int       `gorm:"not null;default:1" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SearchHistory) TableName() string {
	return "search_histories"
}

func (s *SearchHistory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
