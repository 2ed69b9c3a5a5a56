// Package weather reports current pitch conditions from OpenWeather.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openweathermap.org"
	requestTimeout = 10 * time.Second
	cacheKey       = "current"
)

// Report is the current weather in pitch terms.
type Report struct {
	Temp        int    `json:"temp"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	City        string `json:"city"`
}

// Cache stores the last report between launches.
type Cache interface {
	Get(key string, dest any) bool
	Put(key string, value any) error
}

// Provider queries the current weather for one city.
type Provider struct {
	apiKey  string
	city    string
	country string
	baseURL string
	http    *http.Client
	cache   Cache
}

// NewProvider builds a Provider. cache may be nil.
func NewProvider(apiKey, city, country string, cache Cache) *Provider {
	return &Provider{
		apiKey:  strings.TrimSpace(apiKey),
		city:    strings.TrimSpace(city),
		country: strings.TrimSpace(country),
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   cache,
	}
}

// Enabled reports whether an API key is configured.
func (p *Provider) Enabled() bool {
	return p != nil && p.apiKey != "" && p.city != ""
}

// Current returns the current report. Without an API key it returns nil
// and no error so callers can hide the widget.
func (p *Provider) Current(ctx context.Context) (*Report, error) {
	if !p.Enabled() {
		return nil, nil
	}
	var cached Report
	if p.cache != nil && p.cache.Get(cacheKey, &cached) {
		return &cached, nil
	}

	location := p.city
	if p.country != "" {
		location += "," + p.country
	}
	values := url.Values{}
	values.Set("q", location)
	values.Set("units", "metric")
	values.Set("appid", p.apiKey)
	reqURL := strings.TrimRight(p.baseURL, "/") + "/data/2.5/weather?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("weather returned status %d", resp.StatusCode)
	}
	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	report := &Report{
		Temp: int(math.Round(payload.Main.Temp)),
		City: p.city,
	}
	if len(payload.Weather) > 0 {
		report.Condition = PitchCondition(payload.Weather[0].Main)
		report.Description = payload.Weather[0].Description
	}
	if p.cache != nil {
		_ = p.cache.Put(cacheKey, report)
	}
	return report, nil
}

type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// PitchCondition maps an OpenWeather condition group to a pitch label.
func PitchCondition(main string) string {
	lower := strings.ToLower(main)
	switch {
	case strings.Contains(lower, "cloud"):
		return "Cloudy"
	case strings.Contains(lower, "rain"), strings.Contains(lower, "drizzle"):
		return "Wet Pitch"
	case strings.Contains(lower, "clear"):
		return "Dry & Firm"
	case strings.Contains(lower, "snow"):
		return "Frozen Pitch"
	default:
		return main
	}
}
