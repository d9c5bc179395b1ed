package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// PageFetcher wraps Colly for polite HTML retrieval. One attempt per call,
// per-host rate limiting, robots.txt respected by the collector itself.
type PageFetcher struct {
	userAgent string
	timeout   time.Duration
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
}

func NewPageFetcher(userAgent string) *PageFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &PageFetcher{
		userAgent: userAgent,
		timeout:   20 * time.Second,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// GetDocument fetches one rendered page and returns its body and status.
func (f *PageFetcher) GetDocument(ctx context.Context, rawURL string) (string, int, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return "", 0, err
	}
	if err := f.waitForHost(ctx, hostKey(target)); err != nil {
		return "", 0, err
	}

	c := f.newCollector()

	var body []byte
	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		return "", status, &FetchError{URL: rawURL, Status: status, Err: err}
	}
	if reqErr != nil {
		return "", status, &FetchError{URL: rawURL, Status: status, Err: reqErr}
	}
	if status >= 400 {
		return "", status, &FetchError{URL: rawURL, Status: status}
	}
	if status == 0 {
		status = http.StatusOK
	}
	return string(body), status, nil
}

func (f *PageFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func (f *PageFetcher) waitForHost(ctx context.Context, host string) error {
	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 2)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()
	return limiter.Wait(ctx)
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "default"
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "default"
	}
	return host
}
