package location

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	MinQueryLength  = 2
	MaxSuggestions  = 5
)

// CitySuggestion is one search hit
type CitySuggestion struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Admin1   string  `json:"admin1,omitempty"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// FormatCityLabel renders "name, admin1, country", skipping a missing admin1
func FormatCityLabel(c CitySuggestion) string {
	parts := []string{c.Name}
	if c.Admin1 != "" {
		parts = append(parts, c.Admin1)
	}
	parts = append(parts, c.Country)
	return strings.Join(parts, ", ")
}

// CityFinder looks up cities by name
type CityFinder interface {
	FindCities(ctx context.Context, query string, limit int) ([]CitySuggestion, error)
}

// ReverseGeocoder names the city at a coordinate
type ReverseGeocoder interface {
	CityName(ctx context.Context, lat, lon float64) (string, error)
}

// SearchResult is returned for every query. A superseded query yields an
// empty result with no error.
type SearchResult struct {
	RequestID   string           `json:"requestId"`
	Query       string           `json:"query"`
	Suggestions []CitySuggestion `json:"suggestions"`
	Error       string           `json:"error,omitempty"`
}

// Searcher debounces city searches and cancels superseded ones so that only
// the latest query reaches the finder.
type Searcher struct {
	finder   CityFinder
	debounce time.Duration

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
}

func NewSearcher(finder CityFinder, debounce time.Duration) *Searcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Searcher{finder: finder, debounce: debounce}
}

// Search blocks for the debounce interval and then queries the finder,
// unless a newer Search call arrives first.
func (s *Searcher) Search(ctx context.Context, query string) SearchResult {
	id := uuid.NewString()
	trimmed := strings.TrimSpace(query)
	res := SearchResult{RequestID: id, Query: trimmed, Suggestions: []CitySuggestion{}}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.current = id
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == id {
			s.current = ""
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	if utf8.RuneCountInString(trimmed) < MinQueryLength || s.finder == nil {
		return res
	}

	timer := time.NewTimer(s.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return res
	case <-timer.C:
	}

	found, err := s.finder.FindCities(ctx, trimmed, MaxSuggestions)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return res
		}
		res.Error = err.Error()
		return res
	}

	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}
	if found != nil {
		res.Suggestions = found
	}
	return res
}
