package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selera-app/backend/config"
	"github.com/selera-app/backend/internal/models"
	"github.com/selera-app/backend/internal/testhelpers"
)

func newTestRecommend(t *testing.T, spoonacular, mealdb, ranker string) *RecommendService {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	catalog := newTestCatalog(spoonacular, mealdb)
	recipes := NewRecipeService(db, catalog)
	llm := NewLLMService(&config.Config{DeepSeekKey: "test-key", DeepSeekURL: ranker})
	return NewRecommendService(catalog, recipes, llm)
}

func TestForWeatherColdPicksWarmDishes(t *testing.T) {
	var westernQuery atomic.Value
	spoon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		westernQuery.Store(r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Minestrone","image":""}]}`))
	}))
	defer spoon.Close()

	var mealdbQuery atomic.Value
	mealdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mealdbQuery.Store(r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"2","strMeal":"Soto Ayam","strArea":"Indonesian","strMealThumb":""}]}`))
	}))
	defer mealdb.Close()

	// An unreachable ranker exercises the unranked fallback
	svc := newTestRecommend(t, spoon.URL, mealdb.URL, "http://127.0.0.1:1")

	cards := svc.ForWeather(context.Background(),
		&Weather{City: "Bandung", WeatherMain: "Clouds", Temp: 16}, "", 3)

	require.Len(t, cards, 2)
	assert.Equal(t, "soup", westernQuery.Load())
	assert.Equal(t, "soto", mealdbQuery.Load())
	for _, c := range cards {
		assert.Empty(t, c.Reason)
	}
}

func TestForWeatherHotPicksFreshDishes(t *testing.T) {
	var westernQuery atomic.Value
	spoon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		westernQuery.Store(r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Caesar Salad","image":""}]}`))
	}))
	defer spoon.Close()

	var mealdbQuery atomic.Value
	mealdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mealdbQuery.Store(r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"3","strMeal":"Rujak Buah","strArea":"Indonesian","strMealThumb":""}]}`))
	}))
	defer mealdb.Close()

	svc := newTestRecommend(t, spoon.URL, mealdb.URL, "http://127.0.0.1:1")
	cards := svc.ForWeather(context.Background(),
		&Weather{City: "Surabaya", WeatherMain: "Clear", Temp: 33}, "", 3)

	require.Len(t, cards, 2)
	assert.Equal(t, "salad", westernQuery.Load())
	assert.Equal(t, "rujak", mealdbQuery.Load())
}

func TestForWeatherNilWeatherRecommendsNothing(t *testing.T) {
	// Without weather there is nothing to match the rules against, even
	// when the catalogs are healthy.
	spoon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Minestrone","image":""}]}`))
	}))
	defer spoon.Close()

	mealdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"2","strMeal":"Soto Ayam","strArea":"Indonesian","strMealThumb":""}]}`))
	}))
	defer mealdb.Close()

	svc := newTestRecommend(t, spoon.URL, mealdb.URL, "http://127.0.0.1:1")
	cards := svc.ForWeather(context.Background(), nil, "", 3)
	assert.Empty(t, cards)
}

func TestRandomSamplesAcrossSources(t *testing.T) {
	spoon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Minestrone","image":""}]}`))
	}))
	defer spoon.Close()

	mealdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"2","strMeal":"Soto Ayam","strArea":"Indonesian","strMealThumb":""}]}`))
	}))
	defer mealdb.Close()

	svc := newTestRecommend(t, spoon.URL, mealdb.URL, "http://127.0.0.1:1")
	cards := svc.Random(context.Background(), 2)
	assert.Len(t, cards, 2)
}

func TestForWeatherSurvivesCatalogOutage(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	svc := newTestRecommend(t, down.URL, down.URL, "http://127.0.0.1:1")
	cards := svc.ForWeather(context.Background(),
		&Weather{City: "Bandung", WeatherMain: "Rain", Temp: 18}, "", 3)

	// TheMealDB outage falls back to the curated set, which has soto
	require.NotEmpty(t, cards)
	for _, c := range cards {
		assert.Equal(t, models.SourceFallback, c.Source)
		assert.True(t, strings.Contains(strings.ToLower(c.Title), "soto"))
	}
}

func TestForWeatherDedupes(t *testing.T) {
	mealdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"2","strMeal":"Soto Ayam","strArea":"Indonesian","strMealThumb":""}]}`))
	}))
	defer mealdb.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	svc := newTestRecommend(t, down.URL, mealdb.URL, "http://127.0.0.1:1")
	cards := svc.ForWeather(context.Background(),
		&Weather{City: "Bandung", WeatherMain: "Rain", Temp: 18}, "indonesian", 5)

	seen := map[string]bool{}
	for _, c := range cards {
		key := c.Source + ":" + c.ID
		assert.False(t, seen[key], "duplicate card %s", key)
		seen[key] = true
	}
}
