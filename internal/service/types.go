package service

// DefaultRecipeImage is served when a source has no picture for a recipe.
const DefaultRecipeImage = "/static/assets/default_recipe.jpg"

// RecipeCard is the summary shape rendered in search results,
// recommendations and profile lists, regardless of source.
type RecipeCard struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Image  string `json:"image"`
	Reason string `json:"reason,omitempty"`
}

// RecipeDetail is the full shape rendered on the recipe page.
// Instructions hold sanitized HTML.
type RecipeDetail struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Source       string   `json:"source"`
	Image        string   `json:"image"`
	Region       string   `json:"region,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// Card returns the summary form of a detail.
func (d *RecipeDetail) Card() RecipeCard {
	return RecipeCard{ID: d.ID, Title: d.Title, Source: d.Source, Image: d.Image}
}
