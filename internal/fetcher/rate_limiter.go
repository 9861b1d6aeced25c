package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает параллелизм и частоту запросов к одному хосту.
// Нулевые значения отключают соответствующее ограничение.
type RateLimiter struct {
	maxConcurrent int
	rpm           int
	hosts         map[string]*hostLimiter
	mu            sync.Mutex
}

type hostLimiter struct {
	sem     chan struct{} // nil: без ограничения параллелизма
	limiter *rate.Limiter // nil: без ограничения частоты
}

func NewRateLimiter(maxConcurrent, rpm int) *RateLimiter {
	return &RateLimiter{
		maxConcurrent: maxConcurrent,
		rpm:           rpm,
		hosts:         make(map[string]*hostLimiter),
	}
}

func (rl *RateLimiter) forHost(host string) *hostLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.hosts[host]
	if !exists {
		limiter = &hostLimiter{}
		if rl.maxConcurrent > 0 {
			limiter.sem = make(chan struct{}, rl.maxConcurrent)
		}
		if rl.rpm > 0 {
			limiter.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.rpm)), 1)
		}
		rl.hosts[host] = limiter
	}
	return limiter
}

// Acquire ждёт разрешения на запрос к host. release нужно вызвать после завершения запроса.
func (rl *RateLimiter) Acquire(ctx context.Context, host string) (release func(), err error) {
	limiter := rl.forHost(host)

	if limiter.sem != nil {
		select {
		case limiter.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	release = func() {
		if limiter.sem != nil {
			<-limiter.sem
		}
	}

	if limiter.limiter != nil {
		if err := limiter.limiter.Wait(ctx); err != nil {
			release()
			return nil, err
		}
	}

	return release, nil
}
