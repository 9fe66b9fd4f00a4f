/*
Package weather fetches current conditions and a 5-day forecast from the
OpenWeather API with an hour of caching in the household store.

CACHE STRATEGY:
  1. Serve the cached payload while it is fresh (1 hour).
  2. On miss/expiry, fetch from OpenWeather and re-cache.
  3. On upstream failure, serve the stale cache rather than nothing.

Temperatures are carried as decimals so display rounding stays exact
across the Fahrenheit conversions.
*/
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the OpenWeather API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// CacheExpiry is how long a cached payload stays fresh.
const CacheExpiry = time.Hour

// Report is the standardized weather payload served to the tablet.
type Report struct {
	Conditions  string          `json:"conditions"`
	Temperature decimal.Decimal `json:"temperature_f"`
	FeelsLike   decimal.Decimal `json:"feels_like_f"`
	Humidity    int             `json:"humidity"`
	Forecast    []ForecastDay   `json:"forecast"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// ForecastDay is one day of the 5-day forecast.
type ForecastDay struct {
	Date       string          `json:"date"`
	High       decimal.Decimal `json:"high_f"`
	Low        decimal.Decimal `json:"low_f"`
	Conditions string          `json:"conditions"`
}

// Cache persists the most recent report. Absence is (nil, nil).
type Cache interface {
	GetWeatherCache(ctx context.Context) (*Report, error)
	PutWeatherCache(ctx context.Context, r Report) error
}

// Service fetches and caches weather data.
type Service struct {
	APIKey   string
	Location string // "lat,lon" or city name accepted by OpenWeather's q param
	BaseURL  string
	Cache    Cache
	Client   *http.Client
	Now      func() time.Time
}

// NewService creates a Service with sane HTTP defaults.
func NewService(apiKey, location string, cache Cache) *Service {
	return &Service{
		APIKey:   apiKey,
		Location: location,
		BaseURL:  DefaultBaseURL,
		Cache:    cache,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Now:      time.Now,
	}
}

// CurrentWeather returns the freshest report available: cache if fresh,
// the API otherwise, and the stale cache when the API fails.
func (s *Service) CurrentWeather(ctx context.Context) (*Report, error) {
	cached, err := s.Cache.GetWeatherCache(ctx)
	if err != nil {
		log.Printf("[Weather] cache read failed: %v", err)
	}
	if cached != nil && s.Now().UTC().Sub(cached.FetchedAt) < CacheExpiry {
		return cached, nil
	}

	fresh, err := s.fetch(ctx)
	if err != nil {
		log.Printf("[Weather] upstream fetch failed: %v", err)
		if cached != nil {
			// Stale beats nothing.
			return cached, nil
		}
		return nil, fmt.Errorf("weather data unavailable")
	}

	if err := s.Cache.PutWeatherCache(ctx, *fresh); err != nil {
		log.Printf("[Weather] cache write failed: %v", err)
	}
	return fresh, nil
}

// openWeather response shapes (only the fields used).
type currentResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
}

type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			TempMax float64 `json:"temp_max"`
			TempMin float64 `json:"temp_min"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"list"`
}

func (s *Service) fetch(ctx context.Context) (*Report, error) {
	var current currentResponse
	if err := s.getJSON(ctx, "/weather", &current); err != nil {
		return nil, err
	}

	var forecast forecastResponse
	if err := s.getJSON(ctx, "/forecast", &forecast); err != nil {
		return nil, err
	}

	report := &Report{
		Temperature: decimal.NewFromFloat(current.Main.Temp).Round(1),
		FeelsLike:   decimal.NewFromFloat(current.Main.FeelsLike).Round(1),
		Humidity:    current.Main.Humidity,
		FetchedAt:   s.Now().UTC(),
	}
	if len(current.Weather) > 0 {
		report.Conditions = current.Weather[0].Main
	}
	report.Forecast = collapseForecast(forecast)
	return report, nil
}

// collapseForecast folds the API's 3-hour slots into per-day highs/lows.
func collapseForecast(fr forecastResponse) []ForecastDay {
	type dayAgg struct {
		high, low  decimal.Decimal
		conditions string
	}
	order := []string{}
	days := map[string]*dayAgg{}

	for _, slot := range fr.List {
		if len(slot.DtTxt) < 10 {
			continue
		}
		date := slot.DtTxt[:10]
		high := decimal.NewFromFloat(slot.Main.TempMax)
		low := decimal.NewFromFloat(slot.Main.TempMin)

		agg, ok := days[date]
		if !ok {
			agg = &dayAgg{high: high, low: low}
			if len(slot.Weather) > 0 {
				agg.conditions = slot.Weather[0].Main
			}
			days[date] = agg
			order = append(order, date)
			continue
		}
		if high.GreaterThan(agg.high) {
			agg.high = high
		}
		if low.LessThan(agg.low) {
			agg.low = low
		}
	}

	if len(order) > 5 {
		order = order[:5]
	}
	result := make([]ForecastDay, 0, len(order))
	for _, date := range order {
		agg := days[date]
		result = append(result, ForecastDay{
			Date:       date,
			High:       agg.high.Round(1),
			Low:        agg.low.Round(1),
			Conditions: agg.conditions,
		})
	}
	return result
}

func (s *Service) getJSON(ctx context.Context, path string, out any) error {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	q := url.Values{}
	q.Set("q", s.Location)
	q.Set("appid", s.APIKey)
	q.Set("units", "imperial")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openweather returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// MemoryCache is a single-slot in-memory Cache.
type MemoryCache struct {
	report *Report
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) GetWeatherCache(_ context.Context) (*Report, error) {
	return c.report, nil
}

func (c *MemoryCache) PutWeatherCache(_ context.Context, r Report) error {
	c.report = &r
	return nil
}
