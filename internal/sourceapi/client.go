package sourceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"studyspaces/internal/availability"
	"studyspaces/internal/metrics"
)

const buildingsCacheKey = "studyspaces:buildings"

// ErrRoomNotFound is returned when the data source has no record for a room.
var ErrRoomNotFound = errors.New("room not found")

// StatusError is a non-2xx answer from the data source.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    int
}

// Client calls the scheduling data source. Room data is always fetched fresh; only the
// building list may be cached.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter

	maxRetries  int
	backoffBase time.Duration
	jitterMax   time.Duration

	redis    *redis.Client
	cacheTTL time.Duration

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewClient constructs a client from opts.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, burst),
		maxRetries:  retries,
		backoffBase: 250 * time.Millisecond,
		jitterMax:   250 * time.Millisecond,
		logger:      logger.With().Str("component", "sourceapi").Logger(),
	}
}

// UseRedisCache configures optional Redis caching for the building list.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseMetrics attaches request metrics.
func (c *Client) UseMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// ListBuildings returns every building name known to the data source.
func (c *Client) ListBuildings(ctx context.Context) ([]string, error) {
	var names []string
	if c.readCache(ctx, buildingsCacheKey, &names) {
		return names, nil
	}

	if err := c.doGet(ctx, "buildings", c.baseURL+"/buildings", &names); err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	c.writeCache(ctx, buildingsCacheKey, names)
	return names, nil
}

// GetRooms fetches every room of a building with its status at day/time. The building
// must be named the way the data source names it.
func (c *Client) GetRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.Room, error) {
	q := url.Values{}
	q.Set("day", day)
	q.Set("time", hhmm)
	endpoint := fmt.Sprintf("%s/buildings/%s/rooms?%s", c.baseURL, url.PathEscape(sourceName), q.Encode())

	var rooms []availability.Room
	if err := c.doGet(ctx, "building_rooms", endpoint, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []availability.Room{}
	}
	return rooms, nil
}

// GetAvailableRooms fetches the usage records of rooms free at day/time.
func (c *Client) GetAvailableRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.RoomUsage, error) {
	q := url.Values{}
	q.Set("building", sourceName)
	q.Set("day", day)
	q.Set("time", hhmm)
	endpoint := fmt.Sprintf("%s/rooms?%s", c.baseURL, q.Encode())

	var rooms []availability.RoomUsage
	if err := c.doGet(ctx, "available_rooms", endpoint, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []availability.RoomUsage{}
	}
	return rooms, nil
}

// GetRoomUsage fetches the weekly schedule of one room.
func (c *Client) GetRoomUsage(ctx context.Context, sourceName, room string) (*availability.RoomUsage, error) {
	endpoint := fmt.Sprintf("%s/rooms/%s/%s", c.baseURL, url.PathEscape(sourceName), url.PathEscape(room))

	var usage *availability.RoomUsage
	if err := c.doGet(ctx, "room_usage", endpoint, &usage); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", sourceName, room, ErrRoomNotFound)
		}
		return nil, err
	}
	if usage == nil {
		return nil, fmt.Errorf("%s/%s: %w", sourceName, room, ErrRoomNotFound)
	}
	return usage, nil
}

// HealthCheck checks that the data source answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/buildings", http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req, uuid.NewString())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		c.metrics.IncCache(false)
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		c.metrics.IncCache(false)
		return false
	}
	c.metrics.IncCache(true)
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// doGet performs a GET with rate limiting and bounded retries. Transport errors, 429
// and 5xx answers are retried; every attempt carries the same request id.
func (c *Client) doGet(ctx context.Context, name, endpoint string, out any) error {
	requestID := uuid.NewString()
	logger := c.logger.With().Str("endpoint", name).Str("request_id", requestID).Logger()
	start := time.Now()

	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry()
			delay := c.backoff(attempt)
			logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("retrying data source request")
			if werr := sleep(ctx, delay); werr != nil {
				err = werr
				break
			}
		}

		if werr := c.limiter.Wait(ctx); werr != nil {
			err = fmt.Errorf("rate limit: %w", werr)
			break
		}

		var retry bool
		retry, err = c.do(ctx, endpoint, requestID, out)
		if err == nil || !retry {
			break
		}
	}

	c.metrics.ObserveRequest(name, outcome(err), time.Since(start))
	if err != nil {
		logger.Debug().Err(err).Msg("data source request failed")
		return fmt.Errorf("get %s: %w", name, err)
	}
	logger.Debug().Dur("took", time.Since(start)).Msg("data source request")
	return nil
}

// do runs a single attempt and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, endpoint, requestID string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, err
	}
	c.addHeaders(req, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		se := &StatusError{
			Endpoint:   req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, se
	}

	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func (c *Client) addHeaders(req *http.Request, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.backoffBase << (attempt - 1)
	if c.jitterMax > 0 {
		delay += time.Duration(rand.Int64N(int64(c.jitterMax)))
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("http_%d", se.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}
