package service

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"
)

// RecommendService composes weather and region filters over the catalog
// sources and delegates final ordering to the ML ranker. The composer has
// no ranking logic of its own; when the ranker is unavailable the selected
// list is returned unranked.
type RecommendService struct {
	catalog *CatalogService
	recipes *RecipeService
	ranker  *LLMService
}

func NewRecommendService(catalog *CatalogService, recipes *RecipeService, ranker *LLMService) *RecommendService {
	return &RecommendService{catalog: catalog, recipes: recipes, ranker: ranker}
}

// Random mixes recipes from every source and samples n of them.
func (s *RecommendService) Random(ctx context.Context, n int) []RecipeCard {
	if n <= 0 {
		n = 5
	}

	all := s.catalog.SearchWestern(ctx, "main course", SearchOptions{Number: n})
	all = append(all, s.catalog.SearchArchipelago(ctx, "indonesian", "", n)...)
	if userCards, err := s.recipes.List(ctx, n); err == nil {
		all = append(all, userCards...)
	}

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// ForWeather selects recipes matching the weather rules and region, then
// asks the ranker to order them. Without weather there is nothing to match
// against, so nil weather yields no recommendations.
//
// Rules: rain or below 20°C favors warm dishes (soups and soto); above
// 30°C favors fresh dishes (salads and rujak); anything in between gets a
// random pick. A region adds one regional lookup.
func (s *RecommendService) ForWeather(ctx context.Context, w *Weather, region string, n int) []RecipeCard {
	if n <= 0 {
		n = 3
	}
	if w == nil {
		return nil
	}

	condition := strings.ToLower(w.WeatherMain)
	var picks []RecipeCard

	switch {
	case strings.Contains(condition, "rain") || w.Temp < 20:
		picks = append(picks, s.catalog.SearchWestern(ctx, "soup", SearchOptions{Number: 1})...)
		picks = append(picks, s.catalog.SearchArchipelago(ctx, "soto", region, 1)...)
	case w.Temp > 30:
		picks = append(picks, s.catalog.SearchWestern(ctx, "salad", SearchOptions{Number: 1})...)
		picks = append(picks, s.catalog.SearchArchipelago(ctx, "rujak", region, 1)...)
	default:
		picks = append(picks, s.Random(ctx, 1)...)
	}

	if region != "" {
		picks = append(picks, s.catalog.SearchArchipelago(ctx, "", region, 1)...)
	}

	picks = dedupeCards(picks)
	if len(picks) > n {
		picks = picks[:n]
	}

	ranked, err := s.ranker.RankRecipes(ctx, w, region, picks)
	if err != nil {
		log.Warn().Err(err).Msg("ranking unavailable, returning unranked recommendations")
		return picks
	}
	return ranked
}

// cardKey identifies a card across catalogs; bare ids collide between
// sources.
func cardKey(c RecipeCard) string {
	return c.Source + ":" + c.ID
}

func dedupeCards(cards []RecipeCard) []RecipeCard {
	seen := make(map[string]bool, len(cards))
	out := cards[:0]
	for _, c := range cards {
		key := cardKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
