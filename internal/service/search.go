package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/selera-app/backend/internal/models"
)

// RelatedSearch is a suggestion chip on the home page.
type RelatedSearch struct {
	Query     string `json:"query"`
	Cuisine   string `json:"cuisine"`
	Region    string `json:"region,omitempty"`
	Title     string `json:"title"`
	Count     int    `json:"count"`
	IsPopular bool   `json:"is_popular"`
}

// seedSearches anchor the suggestions before real history accumulates.
var seedSearches = []RelatedSearch{
	{Query: "soto", Cuisine: "indonesian", Title: "Soto Ayam", Count: 10},
	{Query: "salad", Cuisine: "western", Title: "Fresh Salad", Count: 8},
	{Query: "rendang", Cuisine: "indonesian", Region: "Sumatra", Title: "Beef Rendang", Count: 12},
	{Query: "pasta", Cuisine: "western", Title: "Creamy Pasta", Count: 7},
	{Query: "gudeg", Cuisine: "indonesian", Region: "Java", Title: "Gudeg Jogja", Count: 9},
}

// SearchService aggregates search history and produces related searches.
type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// Record upserts a search tuple, bumping its count. Failures are logged
// and swallowed: history must never break a search.
func (s *SearchService) Record(ctx context.Context, query, cuisine, region string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SearchHistory
		err := tx.Where("query = ? AND cuisine = ? AND region = ?", query, cuisine, region).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.SearchHistory{
				Query:   query,
				Cuisine: cuisine,
				Region:  region,
				Count:   1,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Updates(map[string]any{
			"count":      existing.Count + 1,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("failed to record search history")
	}
}

// Related returns the top search suggestions: static seeds (a warm soup
// chip is boosted when it rains) merged with the most popular stored
// queries, deduped by query, top five by count.
func (s *SearchService) Related(ctx context.Context, weather *Weather) []RelatedSearch {
	searches := make([]RelatedSearch, 0, len(seedSearches)+6)
	if weather != nil && strings.Contains(strings.ToLower(weather.WeatherMain), "rain") {
		searches = append(searches, RelatedSearch{
			Query: "soup", Cuisine: "western", Title: "Warm Soup", Count: 15,
		})
	}
	searches = append(searches, seedSearches...)

	var popular []models.SearchHistory
	if err := s.db.WithContext(ctx).Order("count DESC").Limit(5).Find(&popular).Error; err != nil {
		log.Error().Err(err).Msg("failed to query search history")
	}
	for _, p := range popular {
		searches = append(searches, RelatedSearch{
			Query:   p.Query,
			Cuisine: p.Cuisine,
			Region:  p.Region,
			Title:   titleCase(p.Query),
			Count:   p.Count,
		})
	}

	byQuery := make(map[string]RelatedSearch, len(searches))
	for _, rs := range searches {
		if existing, ok := byQuery[rs.Query]; !ok || rs.Count > existing.Count {
			byQuery[rs.Query] = rs
		}
	}

	unique := make([]RelatedSearch, 0, len(byQuery))
	for _, rs := range byQuery {
		rs.IsPopular = rs.Count > 10
		unique = append(unique, rs)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Count > unique[j].Count })
	if len(unique) > 5 {
		unique = unique[:5]
	}
	return unique
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
