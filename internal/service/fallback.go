package service

import (
	"strings"

	"github.com/selera-app/backend/internal/models"
)

// fallbackRecipes is the curated archipelago set used when TheMealDB has no
// match or is unreachable. Image URLs point at TheMealDB's stable media CDN.
var fallbackRecipes = []RecipeDetail{
	{
		ID:     "rendang",
		Title:  "Beef Rendang",
		Source: models.SourceFallback,
		Image:  "https://www.themealdb.com/images/media/meals/ypxrvg1515362401.jpg",
		Region: "Sumatra",
		Ingredients: []string{
			"500g beef", "400ml coconut milk", "2 lemongrass stalks",
			"5 kaffir lime leaves", "10 shallots", "5 garlic cloves",
			"5 red chilies", "1 inch ginger", "1 inch galangal",
			"1 tsp turmeric powder", "Salt to taste",
		},
		Instructions: "Blend shallots, garlic, chilies, ginger, galangal and turmeric into a paste. Cook the paste with lemongrass and lime leaves until fragrant. Add beef and coconut milk, simmer for 3-4 hours until the sauce thickens. Season with salt.",
	},
	{
		ID:     "soto",
		Title:  "Soto Ayam",
		Source: models.SourceFallback,
		Image:  "https://www.themealdb.com/images/media/meals/8mpqzz1508507655.jpg",
		Region: "Java",
		Ingredients: []string{
			"500g chicken", "2L water", "2 lemongrass stalks",
			"3 kaffir lime leaves", "2 bay leaves", "5 shallots",
			"3 garlic cloves", "1 inch ginger", "1 tsp turmeric powder",
			"Vermicelli noodles", "Boiled eggs", "Lime wedges",
		},
		Instructions: "Boil chicken with lemongrass, lime leaves and bay leaves. Saute a paste of shallots, garlic, ginger and turmeric until fragrant, add to the broth and simmer for 30 minutes. Shred the chicken and serve with vermicelli, boiled eggs and lime wedges.",
	},
	{
		ID:     "gudeg",
		Title:  "Gudeg Jogja",
		Source: models.SourceFallback,
		Image:  "https://www.themealdb.com/images/media/meals/1529445893.jpg",
		Region: "Java",
		Ingredients: []string{
			"1kg young jackfruit", "500ml coconut milk", "200g palm sugar",
			"5 shallots", "3 garlic cloves", "5 candlenuts",
			"1 tsp coriander powder", "2 bay leaves", "Salt to taste",
		},
		Instructions: "Boil jackfruit until tender. Cook a paste of shallots, garlic, candlenuts and coriander with coconut milk, palm sugar, bay leaves and the jackfruit. Simmer for 4-5 hours until soft and thick. Season with salt.",
	},
	{
		ID:     "satay",
		Title:  "Chicken Satay",
		Source: models.SourceFallback,
		Image:  "https://www.themealdb.com/images/media/meals/1526418975.jpg",
		Region: "Java",
		Ingredients: []string{
			"500g chicken", "2 tbsp soy sauce", "2 tbsp peanut butter",
			"1 tbsp lime juice", "5 shallots", "3 garlic cloves",
			"1 tsp turmeric powder", "1 tsp coriander powder", "Skewers",
		},
		Instructions: "Marinate chicken with a paste of shallots, garlic, turmeric and coriander plus soy sauce, peanut butter and lime juice for 1 hour. Skewer and grill until cooked. Serve with peanut sauce.",
	},
	{
		ID:     "nasi_goreng",
		Title:  "Nasi Goreng",
		Source: models.SourceFallback,
		Image:  "https://www.themealdb.com/images/media/meals/1529445893.jpg",
		Region: "Java",
		Ingredients: []string{
			"2 cups cooked rice", "100g chicken", "2 eggs", "5 shallots",
			"3 garlic cloves", "2 red chilies", "1 tbsp soy sauce",
			"1 tbsp sweet soy sauce", "Fried shallots",
		},
		Instructions: "Saute a paste of shallots, garlic and chilies until fragrant. Add chicken and cook through, scramble the eggs alongside, then add rice, soy sauce, sweet soy sauce and salt. Stir-fry until mixed and garnish with fried shallots.",
	},
	{
		ID:     "soto_banjar",
		Title:  "Soto Banjar",
		Source: models.SourceFallback,
		Image:  "https://www.themealdb.com/images/media/meals/8mpqzz1508507655.jpg",
		Region: "Kalimantan Selatan",
		Ingredients: []string{
			"500g chicken", "2L water", "2 lemongrass stalks",
			"3 kaffir lime leaves", "2 cloves", "2 star anise",
			"5 shallots", "3 garlic cloves", "1 inch ginger",
			"Rice cakes", "Boiled eggs",
		},
		Instructions: "Boil chicken with lemongrass, lime leaves, cloves and star anise. Saute a paste of shallots, garlic, ginger and turmeric until fragrant, add to the broth and simmer for 30 minutes. Shred the chicken and serve with rice cakes and boiled eggs.",
	},
}

// FallbackDetail returns the curated recipe with the given id, or nil.
func FallbackDetail(id string) *RecipeDetail {
	for i := range fallbackRecipes {
		if fallbackRecipes[i].ID == id {
			r := fallbackRecipes[i]
			return &r
		}
	}
	return nil
}

// fallbackMatches filters the curated set by title substring and,
// optionally, region. A query matching no curated title degrades to the
// whole set so an API outage never empties the page.
func fallbackMatches(query, region string, number int) []RecipeCard {
	query = strings.ToLower(strings.TrimSpace(query))

	pick := func(matchTitle bool) []RecipeCard {
		var out []RecipeCard
		for _, r := range fallbackRecipes {
			if matchTitle && !strings.Contains(strings.ToLower(r.Title), query) {
				continue
			}
			if region != "" && !strings.EqualFold(r.Region, region) {
				continue
			}
			out = append(out, r.Card())
			if len(out) >= number {
				break
			}
		}
		return out
	}

	if query != "" {
		if out := pick(true); len(out) > 0 {
			return out
		}
	}
	return pick(false)
}
