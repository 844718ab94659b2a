package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/config"
	"github.com/selera-app/backend/internal/cache"
	"github.com/selera-app/backend/internal/metrics"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// Weather is the subset of OpenWeather data the composer cares about.
type Weather struct {
	City        string  `json:"city"`
	Condition   string  `json:"condition"`
	Temp        float64 `json:"temp"`
	WeatherMain string  `json:"weather_main"`
}

// WeatherService fetches current conditions from OpenWeather. A failed
// lookup returns an error; pages render without the weather section.
type WeatherService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewWeatherService(cfg *config.Config, c *cache.Cache) *WeatherService {
	return &WeatherService{
		apiKey:  cfg.OpenWeatherKey,
		baseURL: defaultOpenWeatherURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   c,
	}
}

// ByCity fetches current conditions for a city name.
func (s *WeatherService) ByCity(ctx context.Context, city string) (*Weather, error) {
	params := url.Values{}
	params.Set("q", city)
	return s.fetch(ctx, "weather:city:"+city, params, city)
}

// ByCoords fetches current conditions for coordinates.
func (s *WeatherService) ByCoords(ctx context.Context, lat, lon float64) (*Weather, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprint(lat))
	params.Set("lon", fmt.Sprint(lon))
	return s.fetch(ctx, fmt.Sprintf("weather:coords:%.3f:%.3f", lat, lon), params, "")
}

func (s *WeatherService) fetch(ctx context.Context, cacheKey string, params url.Values, cityOverride string) (*Weather, error) {
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")

	var payload struct {
		Name    string `json:"name"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}

	err := s.cache.Aside(ctx, cacheKey, &payload, cache.DefaultTTL, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			metrics.ExternalRequestsTotal.WithLabelValues("openweather", "error").Inc()
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			metrics.ExternalRequestsTotal.WithLabelValues("openweather", "error").Inc()
			return fmt.Errorf("openweather returned status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			metrics.ExternalRequestsTotal.WithLabelValues("openweather", "error").Inc()
			return fmt.Errorf("failed to decode response: %w", err)
		}
		metrics.ExternalRequestsTotal.WithLabelValues("openweather", "ok").Inc()
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("weather lookup failed")
		return nil, err
	}

	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("openweather response missing conditions")
	}

	city := payload.Name
	if cityOverride != "" {
		city = cityOverride
	}

	return &Weather{
		City:        city,
		Condition:   payload.Weather[0].Description,
		Temp:        payload.Main.Temp,
		WeatherMain: payload.Weather[0].Main,
	}, nil
}

// SetBaseURL overrides the OpenWeather endpoint; used by tests.
func (s *WeatherService) SetBaseURL(u string) {
	s.baseURL = u
}
