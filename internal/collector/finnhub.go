package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
)

const (
	// DefaultBaseURL is the Finnhub REST API root.
	DefaultBaseURL = "https://finnhub.io/api/v1"

	// DefaultTimeout bounds every provider request.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit keeps a single process under the free tier's 60/min.
	DefaultRateLimit = 1.0
	DefaultBurst     = 5

	// DefaultProfileTTL is how long company profiles are reused in memory.
	DefaultProfileTTL = 24 * time.Hour
)

// FinnhubFetcher implements Fetcher using the Finnhub REST API.
type FinnhubFetcher struct {
	client   *resty.Client
	limiter  *rate.Limiter
	profiles *gocache.Cache
	log      *zap.Logger
}

// FinnhubOption configures a FinnhubFetcher.
type FinnhubOption func(*finnhubOptions)

type finnhubOptions struct {
	baseURL    string
	proxy      string
	timeout    time.Duration
	rateLimit  float64
	burst      int
	profileTTL time.Duration
	log        *zap.Logger
}

// WithBaseURL overrides the API root.
func WithBaseURL(u string) FinnhubOption {
	return func(o *finnhubOptions) { o.baseURL = u }
}

// WithProxy routes requests through an HTTP proxy.
func WithProxy(proxyURL string) FinnhubOption {
	return func(o *finnhubOptions) { o.proxy = proxyURL }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FinnhubOption {
	return func(o *finnhubOptions) { o.timeout = d }
}

// WithRateLimit sets the token bucket rate (requests per second) and burst.
func WithRateLimit(perSecond float64, burst int) FinnhubOption {
	return func(o *finnhubOptions) {
		o.rateLimit = perSecond
		o.burst = burst
	}
}

// WithProfileTTL sets how long profiles are cached. Zero disables caching.
func WithProfileTTL(d time.Duration) FinnhubOption {
	return func(o *finnhubOptions) { o.profileTTL = d }
}

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) FinnhubOption {
	return func(o *finnhubOptions) { o.log = l }
}

// NewFinnhubFetcher creates a fetcher authenticated with apiKey.
func NewFinnhubFetcher(apiKey string, opts ...FinnhubOption) *FinnhubFetcher {
	o := finnhubOptions{
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		rateLimit:  DefaultRateLimit,
		burst:      DefaultBurst,
		profileTTL: DefaultProfileTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(o.baseURL, "/")).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json").
		SetHeader("X-Finnhub-Token", apiKey)
	if o.proxy != "" {
		client.SetProxy(o.proxy)
	}

	limit := rate.Inf
	if o.rateLimit > 0 {
		limit = rate.Limit(o.rateLimit)
	}
	if o.burst < 1 {
		o.burst = 1
	}

	f := &FinnhubFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, o.burst),
		log:     logger.OrNop(o.log),
	}
	if o.profileTTL > 0 {
		f.profiles = gocache.New(o.profileTTL, o.profileTTL/2)
	}
	return f
}

func (f *FinnhubFetcher) Name() string { return "finnhub" }

func (f *FinnhubFetcher) get(ctx context.Context, path, symbol string, result any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrProviderFetch, err)
	}

	f.log.Debug("finnhub request", zap.String("endpoint", path), zap.String("symbol", symbol))

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrProviderFetch, path, symbol, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %w", ErrProviderFetch, &APIError{
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(resp.String()),
			Endpoint:   path,
		})
	}
	return nil
}

// FetchQuote returns the real-time quote for symbol.
func (f *FinnhubFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	var q model.Quote
	if err := f.get(ctx, "/quote", symbol, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// FetchProfile returns the company profile, served from memory when fresh.
func (f *FinnhubFetcher) FetchProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	if f.profiles != nil {
		if v, ok := f.profiles.Get(symbol); ok {
			p := *v.(*model.CompanyProfile)
			return &p, nil
		}
	}
	var p model.CompanyProfile
	if err := f.get(ctx, "/stock/profile2", symbol, &p); err != nil {
		return nil, err
	}
	if f.profiles != nil && !p.IsEmpty() {
		cached := p
		f.profiles.SetDefault(symbol, &cached)
	}
	return &p, nil
}

// FetchRecommendations returns the analyst rating periods, most recent first.
func (f *FinnhubFetcher) FetchRecommendations(ctx context.Context, symbol string) ([]model.RecommendationTrend, error) {
	var recs []model.RecommendationTrend
	if err := f.get(ctx, "/stock/recommendation", symbol, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
