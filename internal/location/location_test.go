package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/waqt/internal/store"
)

var tashkent = Location{Lat: 41.2995, Lon: 69.2401, Timezone: "Asia/Tashkent", City: "Tashkent"}

func TestIPProvider(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr bool
		expectTZ  string
	}{
		{"ok", 200, `{"latitude":41.3,"longitude":69.24,"city":"Tashkent","timezone":{"id":"Asia/Tashkent"}}`, false, "Asia/Tashkent"},
		{"missing zone", 200, `{"latitude":41.3,"longitude":69.24,"city":"Tashkent"}`, false, "UTC"},
		{"equator and prime meridian", 200, `{"success":true,"latitude":0,"longitude":0,"city":"","timezone":{"id":"Africa/Abidjan"}}`, false, "Africa/Abidjan"},
		{"lookup failed", 200, `{"success":false,"message":"Reserved range"}`, true, ""},
		{"missing coordinates", 200, `{"city":"Tashkent","timezone":{"id":"Asia/Tashkent"}}`, true, ""},
		{"missing longitude", 200, `{"latitude":41.3}`, true, ""},
		{"out of range", 200, `{"latitude":91,"longitude":0}`, true, ""},
		{"server error", 500, `oops`, true, ""},
		{"malformed", 200, `{`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := &IPProvider{URL: srv.URL, Client: srv.Client(), DefaultTimezone: "UTC"}
			loc, err := p.Resolve(context.Background())
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if loc.Source != SourceIP {
				t.Errorf("got source %s, expected %s", loc.Source, SourceIP)
			}
			if loc.Timezone != tt.expectTZ {
				t.Errorf("got timezone %q, expected %q", loc.Timezone, tt.expectTZ)
			}
		})
	}
}

type geocoder string

func (g geocoder) CityName(ctx context.Context, lat, lon float64) (string, error) {
	return string(g), nil
}

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{Lat: 41.3, Lon: 69.24, Timezone: "Asia/Tashkent", Geocoder: geocoder("Tashkent")}
	loc, err := p.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.City != "Tashkent" || loc.Source != SourceGeolocation {
		t.Errorf("got %+v, expected geolocated Tashkent", loc)
	}

	bad := &StaticProvider{Lat: 91, Lon: 0}
	if _, err := bad.Resolve(context.Background()); err == nil {
		t.Error("expected error for latitude 91")
	}
}

func TestLocationHelpers(t *testing.T) {
	now := time.Date(2026, 1, 21, 12, 0, 0, 0, time.UTC)
	loc := tashkent
	loc.Timestamp = now.Add(-25 * time.Hour)

	if !loc.Expired(now, DefaultTTL) {
		t.Error("expected 25h old location to be expired")
	}
	loc.Timestamp = now.Add(-time.Hour)
	if loc.Expired(now, DefaultTTL) {
		t.Error("expected 1h old location to be fresh")
	}

	moved := tashkent
	moved.City = "Elsewhere"
	if !tashkent.SamePlace(moved) {
		t.Error("city change should not change the place")
	}
	moved.Lat++
	if tashkent.SamePlace(moved) {
		t.Error("latitude change should change the place")
	}

	if err := (Location{Lat: 0, Lon: 0, Timezone: "Not/AZone"}).Validate(); err == nil {
		t.Error("expected error for unknown time zone")
	}
}

func TestResolverPreliminaryThenFinal(t *testing.T) {
	ipDone := make(chan struct{})

	ip := ProviderFunc(func(ctx context.Context) (Location, error) {
		l := tashkent
		l.Source = SourceIP
		return l, nil
	})
	device := ProviderFunc(func(ctx context.Context) (Location, error) {
		select {
		case <-ipDone:
		case <-ctx.Done():
			return Location{}, ctx.Err()
		}
		l := tashkent
		l.Lat = 41.31
		l.Source = SourceGeolocation
		return l, nil
	})

	r := &Resolver{IP: ip, Device: device}

	var calls []Source
	out, err := r.Resolve(context.Background(),
		func(l Location) {
			calls = append(calls, l.Source)
			close(ipDone)
		},
		func(l Location) { calls = append(calls, l.Source) },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 2 || calls[0] != SourceIP || calls[1] != SourceGeolocation {
		t.Errorf("got callbacks %v, expected [ip geolocation]", calls)
	}
	if out.IP == nil || out.Device == nil || out.RequestID == "" {
		t.Errorf("got outcome %+v, expected both branches and a request ID", out)
	}
}

func TestResolverLateIPIsNotPreliminary(t *testing.T) {
	deviceDone := make(chan struct{})

	ip := ProviderFunc(func(ctx context.Context) (Location, error) {
		<-deviceDone
		return tashkent, nil
	})
	device := ProviderFunc(func(ctx context.Context) (Location, error) {
		return tashkent, nil
	})

	r := &Resolver{IP: ip, Device: device}
	preliminary := 0
	_, err := r.Resolve(context.Background(),
		func(Location) { preliminary++ },
		func(Location) { close(deviceDone) },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preliminary != 0 {
		t.Errorf("got %d preliminary callbacks, expected 0", preliminary)
	}
}

func TestResolverBothFail(t *testing.T) {
	fail := ProviderFunc(func(ctx context.Context) (Location, error) {
		return Location{}, errors.New("denied")
	})

	r := &Resolver{IP: fail, Device: nil}
	_, err := r.Resolve(context.Background(), nil, nil)
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Errorf("got %v, expected ErrLocationUnavailable", err)
	}
}

func TestResolverTimeout(t *testing.T) {
	slow := ProviderFunc(func(ctx context.Context) (Location, error) {
		<-ctx.Done()
		return Location{}, ctx.Err()
	})

	r := &Resolver{IP: slow, Device: slow, IPTimeout: 10 * time.Millisecond, DeviceTimeout: 20 * time.Millisecond}
	start := time.Now()
	_, err := r.Resolve(context.Background(), nil, nil)
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Errorf("got %v, expected ErrLocationUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("resolve took %v, expected the branch timeouts to apply", elapsed)
	}
}

func TestManagerStartFromCache(t *testing.T) {
	now := time.Date(2026, 1, 21, 12, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore()
	cached := tashkent
	cached.Source = SourceIP
	cached.Timestamp = now.Add(-time.Hour)
	if err := st.Write(store.KeyLocation, cached); err != nil {
		t.Fatal(err)
	}

	resolved := make(chan struct{}, 1)
	r := &Resolver{IP: ProviderFunc(func(ctx context.Context) (Location, error) {
		resolved <- struct{}{}
		return tashkent, nil
	})}

	m := NewManager(context.Background(), st, r, DefaultTTL, nil)
	m.SetNowFunc(func() time.Time { return now })
	m.Start()
	defer m.Close()

	loc, ok := m.Location()
	if !ok || loc.City != "Tashkent" {
		t.Fatalf("got %+v (ok %v), expected cached Tashkent", loc, ok)
	}
	if m.Report().Stale {
		t.Error("fresh cache reported stale")
	}

	select {
	case <-resolved:
		t.Error("fresh cache triggered a refresh")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManagerRefresh(t *testing.T) {
	st := store.NewMemoryStore()

	r := &Resolver{IP: ProviderFunc(func(ctx context.Context) (Location, error) {
		l := tashkent
		l.Source = SourceIP
		l.Timestamp = time.Now()
		return l, nil
	})}
	m := NewManager(context.Background(), st, r, DefaultTTL, nil)
	defer m.Close()

	if _, ok := m.Location(); ok {
		t.Fatal("expected no location before refresh")
	}

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep := m.Report()
	if rep.Status != StatusIdle || rep.Location == nil || rep.Location.Source != SourceIP {
		t.Errorf("got report %+v, expected idle with an IP location", rep)
	}

	var cached Location
	if !store.LoadJSON(st, store.KeyLocation, &cached, nil) || cached.City != "Tashkent" {
		t.Errorf("got cached %+v, expected Tashkent", cached)
	}
}

func TestManagerRefreshFailure(t *testing.T) {
	r := &Resolver{IP: ProviderFunc(func(ctx context.Context) (Location, error) {
		return Location{}, errors.New("offline")
	})}
	m := NewManager(context.Background(), store.NewMemoryStore(), r, DefaultTTL, nil)

	if err := m.Refresh(context.Background()); !errors.Is(err, ErrLocationUnavailable) {
		t.Fatalf("got %v, expected ErrLocationUnavailable", err)
	}
	rep := m.Report()
	if rep.Status != StatusError || rep.Error != "Location fetch failed" {
		t.Errorf("got report %+v, expected error status", rep)
	}
}

func TestManagerManualAndOverride(t *testing.T) {
	st := store.NewMemoryStore()
	m := NewManager(context.Background(), st, nil, DefaultTTL, nil)
	m.DefaultTimezone = "Asia/Tashkent"
	defer m.Close()

	loc, err := m.SetManual(41.3, 69.24, "Tashkent", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Timezone != "Asia/Tashkent" || loc.Source != SourceManual {
		t.Errorf("got %+v, expected manual location in Asia/Tashkent", loc)
	}

	if _, err := m.SetManual(100, 0, "Nowhere", "UTC"); err == nil {
		t.Error("expected error for latitude 100")
	}

	m.SetOverride(&Location{Lat: 40.71, Lon: -74.0, Timezone: "America/New_York"})
	got, _ := m.Location()
	if got.City != "Debug" || got.Timezone != "America/New_York" {
		t.Errorf("got %+v, expected debug override", got)
	}
	if !m.Report().Override {
		t.Error("report does not flag the override")
	}

	m.SetOverride(nil)
	got, _ = m.Location()
	if got.City != "Tashkent" {
		t.Errorf("got %+v after clearing override, expected Tashkent", got)
	}

	m.Clear()
	if _, ok := m.Location(); ok {
		t.Error("expected no location after Clear")
	}
	if raw, _ := st.Read(store.KeyLocation); raw != nil {
		t.Errorf("got cached %s after Clear, expected nothing", raw)
	}
}

type recordingFinder struct {
	mu      sync.Mutex
	queries []string
	results []CitySuggestion
}

func (f *recordingFinder) FindCities(ctx context.Context, q string, limit int) ([]CitySuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.results, nil
}

func TestSearcher(t *testing.T) {
	many := make([]CitySuggestion, 8)
	for i := range many {
		many[i] = CitySuggestion{ID: int64(i), Name: "Springfield", Country: "United States"}
	}
	finder := &recordingFinder{results: many}
	s := NewSearcher(finder, 50*time.Millisecond)

	short := s.Search(context.Background(), " a ")
	if len(short.Suggestions) != 0 || short.RequestID == "" {
		t.Errorf("got %+v for a one-rune query, expected an empty result", short)
	}

	first := make(chan SearchResult, 1)
	go func() { first <- s.Search(context.Background(), "Spr") }()
	time.Sleep(10 * time.Millisecond)

	latest := s.Search(context.Background(), "Springfield")
	superseded := <-first

	if len(superseded.Suggestions) != 0 || superseded.Error != "" {
		t.Errorf("got %+v for the superseded query, expected an empty result", superseded)
	}
	if len(latest.Suggestions) != MaxSuggestions {
		t.Errorf("got %d suggestions, expected %d", len(latest.Suggestions), MaxSuggestions)
	}

	finder.mu.Lock()
	defer finder.mu.Unlock()
	if len(finder.queries) != 1 || finder.queries[0] != "Springfield" {
		t.Errorf("got finder queries %v, expected only [Springfield]", finder.queries)
	}
}

func TestFormatCityLabel(t *testing.T) {
	tests := []struct {
		city     CitySuggestion
		expected string
	}{
		{CitySuggestion{Name: "Tashkent", Admin1: "Toshkent Shahri", Country: "Uzbekistan"}, "Tashkent, Toshkent Shahri, Uzbekistan"},
		{CitySuggestion{Name: "Singapore", Country: "Singapore"}, "Singapore, Singapore"},
	}
	for _, tt := range tests {
		if got := FormatCityLabel(tt.city); got != tt.expected {
			t.Errorf("got %q, expected %q", got, tt.expected)
		}
	}
}

func TestFindPreset(t *testing.T) {
	p, ok := FindPreset("Tromsø")
	if !ok || p.Timezone != "Europe/Oslo" {
		t.Errorf("got %+v (ok %v), expected Tromsø in Europe/Oslo", p, ok)
	}
	if _, ok := FindPreset("Atlantis"); ok {
		t.Error("expected no preset for Atlantis")
	}
}

func TestPresetFinder(t *testing.T) {
	f := &PresetFinder{}

	tests := []struct {
		query    string
		expected []string
	}{
		{"to", []string{"Tokyo"}},
		{"k", []string{"Tashkent", "New York", "Tokyo", "Reykjavik"}},
		{"york", []string{"New York"}},
		{"LON", []string{"London"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		got, err := f.FindCities(context.Background(), tt.query, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var names []string
		for _, s := range got {
			names = append(names, s.Name)
		}
		if len(names) != len(tt.expected) {
			t.Errorf("FindCities(%q) = %v, expected %v", tt.query, names, tt.expected)
			continue
		}
		for i := range names {
			if names[i] != tt.expected[i] {
				t.Errorf("FindCities(%q) = %v, expected %v", tt.query, names, tt.expected)
				break
			}
		}
	}

	city, err := f.CityName(context.Background(), 41.31, 69.28)
	if err != nil || city != "Tashkent" {
		t.Errorf("got %q (%v), expected Tashkent", city, err)
	}
	if _, err := f.CityName(context.Background(), 0, 0); err == nil {
		t.Error("expected error far from every preset")
	}
}
