package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pjf-digital/consultai/internal/config"
)

const (
	gnewsBaseURL = "https://gnews.io/api/v4/search"
	gnewsQuery   = "saúde Minas Gerais"
)

// Article is a health news item as returned by GNews.
type Article struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	URL         string        `json:"url"`
	Image       string        `json:"image"`
	PublishedAt string        `json:"publishedAt"`
	Source      ArticleSource `json:"source"`
}

type ArticleSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type gnewsResponse struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

// NewsService is a read-through cache in front of the GNews API. One
// cached value, time-based expiry, last write wins. Duplicate upstream
// fetches around the expiry boundary are acceptable and self-correcting.
type NewsService struct {
	apiKey string
	ttl    time.Duration
	logger *zap.Logger

	// Injected for deterministic expiry tests.
	now   func() time.Time
	fetch func(ctx context.Context) ([]Article, error)

	mu       sync.Mutex
	cached   []Article
	cachedAt time.Time
}

func NewNewsService(cfg *config.Config, logger *zap.Logger) *NewsService {
	client := &http.Client{Timeout: cfg.NewsTimeout}
	s := &NewsService{
		apiKey: cfg.GNewsAPIKey,
		ttl:    cfg.NewsCacheTTL,
		logger: logger,
		now:    time.Now,
	}
	s.fetch = func(ctx context.Context) ([]Article, error) {
		return fetchGNews(ctx, client, cfg.GNewsAPIKey)
	}
	return s
}

// Articles returns the cached article list, refreshing it from GNews
// when the cache window has elapsed. Upstream failure falls back to a
// small static dataset and is never surfaced as an error.
func (s *NewsService) Articles(ctx context.Context) ([]Article, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	now := s.now()

	s.mu.Lock()
	if s.cached != nil && now.Sub(s.cachedAt) < s.ttl {
		articles := s.cached
		s.mu.Unlock()
		return articles, nil
	}
	s.mu.Unlock()

	articles, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("news upstream failed, serving static fallback", zap.Error(err))
		return fallbackArticles(now), nil
	}

	s.mu.Lock()
	s.cached = articles
	s.cachedAt = now
	s.mu.Unlock()

	return articles, nil
}

func fetchGNews(ctx context.Context, client *http.Client, apiKey string) ([]Article, error) {
	params := url.Values{}
	params.Set("q", gnewsQuery)
	params.Set("lang", "pt")
	params.Set("country", "br")
	params.Set("max", "10")
	params.Set("token", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gnewsBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build GNews request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GNews request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GNews API error: %d", resp.StatusCode)
	}

	var decoded gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode GNews response: %w", err)
	}
	if decoded.Articles == nil {
		return []Article{}, nil
	}
	return decoded.Articles, nil
}

func fallbackArticles(now time.Time) []Article {
	publishedAt := now.UTC().Format(time.RFC3339)
	return []Article{
		{
			Title:       "Secretaria de Saúde de MG amplia vacinação",
			Description: "Novas doses de vacinas estão disponíveis em todas as regionais de saúde do estado.",
			URL:         "https://www.saude.mg.gov.br",
			PublishedAt: publishedAt,
			Source:      ArticleSource{Name: "SES-MG", URL: "https://www.saude.mg.gov.br"},
		},
		{
			Title:       "UPAs de Juiz de Fora com atendimento 24h",
			Description: "Unidades de Pronto Atendimento funcionam normalmente durante o feriado.",
			URL:         "https://www.pjf.mg.gov.br",
			PublishedAt: publishedAt,
			Source:      ArticleSource{Name: "PJF", URL: "https://www.pjf.mg.gov.br"},
		},
		{
			Title:       "Campanha de prevenção à dengue em MG",
			Description: "Estado intensifica ações de combate ao mosquito Aedes aegypti.",
			URL:         "https://www.saude.mg.gov.br",
			PublishedAt: publishedAt,
			Source:      ArticleSource{Name: "SES-MG", URL: "https://www.saude.mg.gov.br"},
		},
	}
}
