package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arturomz/bank-records-go/pkg/utils"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "user_address_locator"
	DefaultCacheTTL  = 24 * time.Hour

	cacheKeyPrefix = "geocode:"
)

// Location holds resolved coordinates for a postal address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-form postal address into coordinates.
// A nil Location with nil error means the address could not be resolved.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*Location, error)
}

// Config holds dependencies and tunables for the HTTP geocoder.
type Config struct {
	Logger      *zap.Logger
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MaxRetries  uint64
	RedisClient *redis.Client // optional result cache
	CacheTTL    time.Duration
}

type Client struct {
	logger     *zap.Logger
	baseURL    string
	userAgent  string
	maxRetries uint64
	httpClient *http.Client
	redis      *redis.Client
	cacheTTL   time.Duration
}

// NewClient builds a Nominatim-style geocode client on the shared HTTP transport.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if utils.IsEmpty(baseURL) {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if utils.IsEmpty(userAgent) {
		userAgent = DefaultUserAgent
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Client{
		logger:     cfg.Logger,
		baseURL:    baseURL,
		userAgent:  userAgent,
		maxRetries: cfg.MaxRetries,
		httpClient: utils.NewHTTPClient(utils.WithClientTimeout(cfg.Timeout)),
		redis:      cfg.RedisClient,
		cacheTTL:   cacheTTL,
	}
}

// nominatimResult mirrors the wire format of the lookup service.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves an address, consulting the Redis cache first when configured.
// Transport-level failures are retried with exponential backoff before giving up.
func (c *Client) Lookup(ctx context.Context, address string) (*Location, error) {
	if loc, ok := c.cacheGet(ctx, address); ok {
		return loc, nil
	}

	var results []nominatimResult
	operation := func() error {
		var err error
		results, err = c.search(ctx, address)
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: bad longitude %q: %w", results[0].Lon, err)
	}

	loc := &Location{Latitude: lat, Longitude: lon}
	c.cacheSet(ctx, address, loc)
	return loc, nil
}

func (c *Client) search(ctx context.Context, address string) ([]nominatimResult, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("geocode: decode response: %w", err))
	}
	return results, nil
}

func (c *Client) cacheGet(ctx context.Context, address string) (*Location, bool) {
	if c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, cacheKeyPrefix+address).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("geocode cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		c.logger.Warn("geocode cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &loc, true
}

func (c *Client) cacheSet(ctx context.Context, address string, loc *Location) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKeyPrefix+address, raw, c.cacheTTL).Err(); err != nil {
		c.logger.Warn("geocode cache write failed", zap.Error(err))
	}
}
