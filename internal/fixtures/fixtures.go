// Package fixtures fetches upcoming matches for the followed clubs from
// API-Football, caching results on the device.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Status is the simplified match state shown in the UI.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
	StatusPostponed Status = "POSTPONED"
)

// Match is one fixture in app form.
type Match struct {
	ID        int       `json:"id"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	HomeScore *int      `json:"homeScore"`
	AwayScore *int      `json:"awayScore"`
	Status    Status    `json:"status"`
	Kickoff   time.Time `json:"kickoffTime"`
	League    string    `json:"league"`
	Mock      bool      `json:"isMock,omitempty"`
}

// Team ids on API-Football.
const (
	TeamCeltic        = 50
	TeamFalkirk       = 243
	TeamStenhousemuir = 254
)

const (
	defaultBaseURL   = "https://v3.football.api-sports.io"
	apiHost          = "v3.football.api-sports.io"
	requestTimeout   = 10 * time.Second
	upcomingCacheKey = "upcoming_matches"
	upcomingWindow   = 30 * 24 * time.Hour
	recentWindow     = 14 * 24 * time.Hour
	maxRecent        = 6
	dateLayout       = "2006-01-02"
)

// Cache is the device cache used for fixture lists.
type Cache interface {
	Get(key string, dest any) bool
	Put(key string, value any) error
}

// Provider queries API-Football.
type Provider struct {
	apiKey      string
	baseURL     string
	seasonYear  int
	teams       []int
	recentTeams []int
	http        *http.Client
	cache       Cache
	now         func() time.Time
}

// NewProvider builds a Provider. An empty apiKey makes Upcoming return mock
// fixtures; cache may be nil.
func NewProvider(apiKey string, cache Cache) *Provider {
	return &Provider{
		apiKey:      strings.TrimSpace(apiKey),
		baseURL:     defaultBaseURL,
		teams:       []int{TeamCeltic, TeamFalkirk, TeamStenhousemuir},
		recentTeams: []int{TeamCeltic, TeamFalkirk},
		http:        &http.Client{Timeout: requestTimeout},
		cache:       cache,
		now:         time.Now,
	}
}

// Upcoming returns fixtures for the next 30 days, falling back to recent
// results and then to mock fixtures. It never returns an empty list.
func (p *Provider) Upcoming(ctx context.Context) ([]Match, error) {
	var cached []Match
	if p.cache != nil && p.cache.Get(upcomingCacheKey, &cached) && len(cached) > 0 {
		return cached, nil
	}
	if p.apiKey == "" {
		return MockMatches(p.now()), nil
	}

	now := p.now()
	matches, err := p.fetchRange(ctx, p.teams, now, now.Add(upcomingWindow))
	if err != nil {
		log.Printf("fixtures: upcoming fetch failed: %v", err)
		return MockMatches(now), nil
	}
	slices.SortFunc(matches, func(a, b Match) int { return a.Kickoff.Compare(b.Kickoff) })

	if len(matches) == 0 {
		recent, err := p.fetchRange(ctx, p.recentTeams, now.Add(-recentWindow), now)
		if err != nil {
			log.Printf("fixtures: recent fetch failed: %v", err)
		}
		slices.SortFunc(recent, func(a, b Match) int { return b.Kickoff.Compare(a.Kickoff) })
		if len(recent) > maxRecent {
			recent = recent[:maxRecent]
		}
		matches = recent
	}
	if len(matches) == 0 {
		log.Printf("fixtures: no data from API, using mock fixtures")
		matches = MockMatches(now)
	}

	if p.cache != nil {
		if err := p.cache.Put(upcomingCacheKey, matches); err != nil {
			log.Printf("fixtures: cache write failed: %v", err)
		}
	}
	return matches, nil
}

func (p *Provider) season(now time.Time) int {
	if p.seasonYear > 0 {
		return p.seasonYear
	}
	// Scottish seasons start in July/August and are named by their start year.
	if now.Month() < time.July {
		return now.Year() - 1
	}
	return now.Year()
}

// fetchRange queries each team concurrently and de-duplicates fixtures by id.
func (p *Provider) fetchRange(ctx context.Context, teams []int, from, to time.Time) ([]Match, error) {
	type result struct {
		matches []Match
		err     error
	}
	results := make(chan result, len(teams))
	for _, team := range teams {
		go func(team int) {
			matches, err := p.fetchTeam(ctx, team, from, to)
			results <- result{matches: matches, err: err}
		}(team)
	}

	seen := make(map[int]struct{})
	var all []Match
	var firstErr error
	failures := 0
	for range teams {
		r := <-results
		if r.err != nil {
			failures++
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for _, m := range r.matches {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			all = append(all, m)
		}
	}
	if failures == len(teams) && firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

func (p *Provider) fetchTeam(ctx context.Context, team int, from, to time.Time) ([]Match, error) {
	values := url.Values{}
	values.Set("team", strconv.Itoa(team))
	values.Set("season", strconv.Itoa(p.season(from)))
	values.Set("from", from.Format(dateLayout))
	values.Set("to", to.Format(dateLayout))

	reqURL := strings.TrimRight(p.baseURL, "/") + "/fixtures?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", p.apiKey)
	req.Header.Set("x-rapidapi-host", apiHost)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("team %d returned status %d", team, resp.StatusCode)
	}
	var payload fixturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Errors) > 0 && string(payload.Errors) != "[]" && string(payload.Errors) != "{}" {
		log.Printf("fixtures: team %d api errors: %s", team, payload.Errors)
	}
	matches := make([]Match, 0, len(payload.Response))
	for _, f := range payload.Response {
		matches = append(matches, f.match())
	}
	return matches, nil
}

type fixturesResponse struct {
	Errors   json.RawMessage `json:"errors"`
	Response []apiFixture    `json:"response"`
}

type apiFixture struct {
	Fixture struct {
		ID     int    `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
}

func (f apiFixture) match() Match {
	kickoff, _ := time.Parse(time.RFC3339, f.Fixture.Date)
	return Match{
		ID:        f.Fixture.ID,
		HomeTeam:  f.Teams.Home.Name,
		AwayTeam:  f.Teams.Away.Name,
		HomeScore: f.Goals.Home,
		AwayScore: f.Goals.Away,
		Status:    statusFromShort(f.Fixture.Status.Short),
		Kickoff:   kickoff,
		League:    f.League.Name,
	}
}

func statusFromShort(short string) Status {
	switch strings.ToUpper(strings.TrimSpace(short)) {
	case "1H", "2H", "HT", "ET", "P", "BT":
		return StatusLive
	case "FT", "AET", "PEN":
		return StatusFinished
	case "PST", "CANC", "ABD":
		return StatusPostponed
	default:
		return StatusScheduled
	}
}

// MockMatches returns placeholder fixtures used when the API is unavailable.
func MockMatches(now time.Time) []Match {
	day := 24 * time.Hour
	return []Match{
		{ID: 1, HomeTeam: "Celtic", AwayTeam: "Rangers", Status: StatusScheduled, Kickoff: now.Add(day), League: "Scottish Premiership", Mock: true},
		{ID: 2, HomeTeam: "Falkirk", AwayTeam: "Dunfermline", Status: StatusScheduled, Kickoff: now.Add(2 * day), League: "Scottish Championship", Mock: true},
		{ID: 3, HomeTeam: "Stenhousemuir", AwayTeam: "Peterhead", Status: StatusScheduled, Kickoff: now.Add(3 * day), League: "League One", Mock: true},
	}
}
