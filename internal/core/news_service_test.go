package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
)

type manualClock struct {
	current time.Time
}

func (c *manualClock) Now() time.Time { return c.current }

func (c *manualClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestNewsService(clock *manualClock, fetch func(context.Context) ([]Article, error)) *NewsService {
	return &NewsService{
		apiKey: "test-key",
		ttl:    30 * time.Minute,
		logger: zap.NewNop(),
		now:    clock.Now,
		fetch:  fetch,
	}
}

func TestNewsMissingAPIKey(t *testing.T) {
	s := newTestNewsService(&manualClock{}, nil)
	s.apiKey = ""

	if _, err := s.Articles(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewsCacheHitWithinWindow(t *testing.T) {
	clock := &manualClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	fetches := 0
	upstream := []Article{{Title: "Vacinação ampliada em MG"}}

	s := newTestNewsService(clock, func(context.Context) ([]Article, error) {
		fetches++
		return upstream, nil
	})

	first, err := s.Articles(context.Background())
	if err != nil {
		t.Fatalf("First call failed: %v", err)
	}

	clock.Advance(29 * time.Minute)
	second, err := s.Articles(context.Background())
	if err != nil {
		t.Fatalf("Second call failed: %v", err)
	}

	if fetches != 1 {
		t.Errorf("Expected exactly one upstream fetch, got %d", fetches)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Cache hit must return an identical article list")
	}
}

func TestNewsCacheExpiry(t *testing.T) {
	clock := &manualClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	fetches := 0

	s := newTestNewsService(clock, func(context.Context) ([]Article, error) {
		fetches++
		return []Article{{Title: "edição"}}, nil
	})

	s.Articles(context.Background())
	clock.Advance(30 * time.Minute)
	s.Articles(context.Background())

	if fetches != 2 {
		t.Errorf("Expected refetch once the window elapsed, got %d fetches", fetches)
	}
}

func TestNewsFallbackOnUpstreamFailure(t *testing.T) {
	clock := &manualClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestNewsService(clock, func(context.Context) ([]Article, error) {
		return nil, errors.New("upstream down")
	})

	articles, err := s.Articles(context.Background())
	if err != nil {
		t.Fatalf("Fallback path must not return an error, got %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("Expected the three-item fallback list, got %d items", len(articles))
	}
	for _, a := range articles {
		if a.Title == "" || a.Source.Name == "" {
			t.Errorf("Fallback article missing fields: %+v", a)
		}
	}
}

func TestNewsFallbackIsNotCached(t *testing.T) {
	clock := &manualClock{current: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	fail := true
	fetches := 0

	s := newTestNewsService(clock, func(context.Context) ([]Article, error) {
		fetches++
		if fail {
			return nil, errors.New("upstream down")
		}
		return []Article{{Title: "de volta"}}, nil
	})

	s.Articles(context.Background())
	fail = false
	articles, _ := s.Articles(context.Background())

	if fetches != 2 {
		t.Errorf("Expected a retry after a failed fetch, got %d fetches", fetches)
	}
	if len(articles) != 1 || articles[0].Title != "de volta" {
		t.Errorf("Expected fresh upstream articles after recovery, got %+v", articles)
	}
}
