package fetcher

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"medical-news-scraper/internal/observability"
)

// Resolver разрешение имени хоста; по умолчанию net.DefaultResolver
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// lookupTimeout ограничивает общий запрос DNS: он не отменяется вместе с вызывающим
const lookupTimeout = 10 * time.Second

type availabilityEntry struct {
	reachable bool
	expiresAt time.Time // нулевое значение: запись не устаревает
}

// Checker проверяет доступность хоста через DNS и кэширует результат.
// Кэш принадлежит экземпляру; одновременные проверки одного хоста выполняют один запрос.
type Checker struct {
	resolver Resolver
	ttl      time.Duration
	timeout  time.Duration
	logger   *observability.Logger
	metrics  *observability.Metrics
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]availabilityEntry
	group singleflight.Group
}

func NewChecker(resolver Resolver, ttl time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Checker{
		resolver: resolver,
		ttl:      ttl,
		timeout:  lookupTimeout,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		cache:    make(map[string]availabilityEntry),
	}
}

// IsReachable сообщает, разрешается ли хост из rawURL. Ошибки не возвращаются:
// нераспознанный URL, неудачное разрешение или отмена ctx дают false.
func (c *Checker) IsReachable(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		c.logger.Warn("availability check skipped: bad url", "url", rawURL)
		return false
	}
	host := u.Hostname()

	if reachable, ok := c.lookupCache(host); ok {
		c.metrics.ObserveAvailability(true)
		return reachable
	}
	c.metrics.ObserveAvailability(false)

	// Общий запрос живёт отдельно от контекста первого вызывающего,
	// иначе его отмена превратилась бы в "хост недоступен" для всех ожидающих.
	ch := c.group.DoChan(host, func() (interface{}, error) {
		// Пока ждали, результат мог появиться
		if reachable, ok := c.lookupCache(host); ok {
			return reachable, nil
		}

		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		_, err := c.resolver.LookupHost(lookupCtx, host)
		reachable := err == nil
		if err != nil {
			c.logger.Warn("host unreachable", "host", host, "error", err)
		}
		c.store(host, reachable)
		return reachable, nil
	})

	select {
	case res := <-ch:
		return res.Val.(bool)
	case <-ctx.Done():
		return false
	}
}

func (c *Checker) lookupCache(host string) (bool, bool) {
	c.mu.RLock()
	entry, ok := c.cache[host]
	c.mu.RUnlock()
	if !ok {
		return false, false
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		return false, false
	}
	return entry.reachable, true
}

func (c *Checker) store(host string, reachable bool) {
	entry := availabilityEntry{reachable: reachable}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.cache[host] = entry
	c.mu.Unlock()
}
