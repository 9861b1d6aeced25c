package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"medical-news-scraper/internal/observability"
)

const maxRobotsBytes = 512 << 10

type RobotsCache struct {
	cache     map[string]*robotsEntry
	ttl       time.Duration
	userAgent string
	mu        sync.RWMutex
	logger    *observability.Logger
}

type robotsEntry struct {
	group     *robotstxt.Group
	expiresAt time.Time
}

func NewRobotsCache(ttl time.Duration, userAgent string, logger *observability.Logger) *RobotsCache {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &RobotsCache{
		cache:     make(map[string]*robotsEntry),
		ttl:       ttl,
		userAgent: userAgent,
		logger:    logger,
	}
}

// IsAllowed проверяет target по robots.txt его хоста.
// Если robots.txt недоступен по сети, разрешаем.
func (rc *RobotsCache) IsAllowed(ctx context.Context, client *http.Client, target *url.URL) bool {
	origin := target.Scheme + "://" + target.Host

	rc.mu.RLock()
	cached, exists := rc.cache[origin]
	rc.mu.RUnlock()

	if exists && time.Now().Before(cached.expiresAt) {
		return cached.group.Test(robotsPath(target))
	}

	group, ok := rc.fetch(ctx, client, origin)
	if !ok {
		return true
	}

	rc.mu.Lock()
	rc.cache[origin] = &robotsEntry{
		group:     group,
		expiresAt: time.Now().Add(rc.ttl),
	}
	rc.mu.Unlock()

	return group.Test(robotsPath(target))
}

func robotsPath(target *url.URL) string {
	if p := target.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

func (rc *RobotsCache) fetch(ctx context.Context, client *http.Client, origin string) (*robotstxt.Group, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		rc.logger.Debug("robots.txt fetch failed", "origin", origin, "error", err)
		return nil, false
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			rc.logger.Warn("failed to close robots.txt body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, false
	}

	// при 4xx всё разрешено, при 5xx всё запрещено
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		rc.logger.Warn("robots.txt parse failed", "origin", origin, "error", err)
		return nil, false
	}

	return data.FindGroup(rc.userAgent), true
}
