package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"medical-news-scraper/internal/config"
	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/source"
)

var (
	// ErrBadStatus сервер ответил статусом вне допустимого набора
	ErrBadStatus = errors.New("unexpected status code")
	// ErrDisallowed URL запрещён robots.txt
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Fetcher выполняет GET-запросы от имени источника: свои заголовки и TLS-политика
// на каждый запрос, без общего пула соединений между источниками.
type Fetcher struct {
	defaultHeaders map[string]string
	timeout        time.Duration
	maxBodyBytes   int64
	logger         *observability.Logger
	robotsCache    *RobotsCache
	rateLimiter    *RateLimiter
}

// Page загруженная страница; Body уже перекодирован в UTF-8
type Page struct {
	StatusCode int
	URL        *url.URL
	Body       []byte
	Headers    http.Header
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	f := &Fetcher{
		defaultHeaders: cfg.DefaultHeaders(),
		timeout:        cfg.GetTotalTimeout(),
		maxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		logger:         logger,
		rateLimiter:    NewRateLimiter(cfg.RateLimit.MaxConcurrentPerHost, cfg.RateLimit.RPM),
	}
	if cfg.Robots.Enabled {
		f.robotsCache = NewRobotsCache(cfg.GetRobotsCacheTTL(), cfg.HTTP.UserAgent, logger)
	}
	return f
}

// acceptedStatus коды, при которых тело страницы считается пригодным
func acceptedStatus(code int) bool {
	return code == http.StatusOK || code == http.StatusFound
}

// Fetch загружает target с настройками источника src
func (f *Fetcher) Fetch(ctx context.Context, src source.Descriptor, target string) (*Page, error) {
	parsedURL, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	client := f.clientFor(src)

	if f.robotsCache != nil && !f.robotsCache.IsAllowed(ctx, client, parsedURL) {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, target)
	}

	release, err := f.rateLimiter.Acquire(ctx, parsedURL.Host)
	if err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headersFor(src) {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("failed to close response body", "url", target, "error", err)
		}
	}()

	if !acceptedStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, target)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", target, err)
	}

	f.logger.Debug("page fetched",
		"source", src.Name,
		"url", target,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return &Page{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// clientFor отдельный клиент на запрос: keep-alive выключен, TLS по политике источника
func (f *Fetcher) clientFor(src source.Descriptor) *http.Client {
	return &http.Client{
		Timeout: f.timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     TLSConfigFor(src),
			DisableKeepAlives:   true,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// headersFor базовые заголовки, перекрытые заголовками источника
func (f *Fetcher) headersFor(src source.Descriptor) map[string]string {
	headers := make(map[string]string, len(f.defaultHeaders)+len(src.Headers))
	for k, v := range f.defaultHeaders {
		if v != "" {
			headers[http.CanonicalHeaderKey(k)] = v
		}
	}
	for k, v := range src.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	return headers
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if f.maxBodyBytes > 0 {
		reader = io.LimitReader(reader, f.maxBodyBytes)
	}

	// gzip снимает сам транспорт, здесь остаётся только перекодировка
	decoded, err := charset.NewReader(reader, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return io.ReadAll(decoded)
}
