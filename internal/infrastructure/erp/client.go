// Package erp is a JSON-RPC client for Odoo-compatible ERP servers.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iho/ledgersync/internal/domain"
)

// Config for Client.
type Config struct {
	URL        string
	Database   string
	Username   string
	Password   string // password or API key
	Timeout    time.Duration
	MaxRetries int
	Rate       float64 // requests per second, 0 disables limiting
	Burst      int
}

// Observer receives one call per RPC round trip.
type Observer interface {
	ObserveERPCall(model, method string, elapsed time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveERPCall(string, string, time.Duration, error) {}

// Client implements usecase.ExternalClient over /jsonrpc.
type Client struct {
	cfg      Config
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	observer Observer
	logger   zerolog.Logger

	retryInterval time.Duration

	mu     sync.Mutex
	uid    int64
	nextID atomic.Int64
}

// New creates a new Client. A nil observer disables call metrics.
func New(cfg Config, observer Observer, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if observer == nil {
		observer = noopObserver{}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	return &Client{
		cfg:      cfg,
		endpoint: strings.TrimRight(cfg.URL, "/") + "/jsonrpc",
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  limiter,
		observer: observer,
		logger:   logger.With().Str("component", "erp").Logger(),

		retryInterval: 200 * time.Millisecond,
	}
}

// replay says when a failed request may be sent again.
type replay int

const (
	// replaySafe requests have no side effects or converge when repeated.
	replaySafe replay = iota
	// replayUndelivered requests are resent only when the ERP never saw them.
	replayUndelivered
)

// Create inserts one record and returns its id.
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	result, err := c.execute(ctx, model, "create", []any{normalizeMap(values)}, nil, replayUndelivered)
	if err != nil {
		return 0, err
	}
	return toInt64(result)
}

// Read returns the requested fields of the given records.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	result, err := c.execute(ctx, model, "read", []any{ids}, kwargs, replaySafe)
	if err != nil {
		return nil, err
	}
	return records(result)
}

// Write updates one record. Plain field writes converge and are replayed on
// any transport failure; writes carrying x2many commands are not.
func (c *Client) Write(ctx context.Context, model string, id int64, values map[string]any) error {
	normalized := normalizeMap(values)
	mode := replaySafe
	if hasCommands(normalized) {
		mode = replayUndelivered
	}
	_, err := c.execute(ctx, model, "write", []any{[]int64{id}, normalized}, nil, mode)
	return err
}

// Unlink deletes records.
func (c *Client) Unlink(ctx context.Context, model string, ids []int64) error {
	_, err := c.execute(ctx, model, "unlink", []any{ids}, nil, replayUndelivered)
	return err
}

// Search returns the records matching every condition.
func (c *Client) Search(ctx context.Context, model string, filter []domain.Condition, opts domain.SearchOptions) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(opts.Fields) > 0 {
		kwargs["fields"] = opts.Fields
	}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Offset > 0 {
		kwargs["offset"] = opts.Offset
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}

	result, err := c.execute(ctx, model, "search_read", []any{searchDomain(filter)}, kwargs, replaySafe)
	if err != nil {
		return nil, err
	}
	return records(result)
}

// Call invokes a model method such as action_post.
func (c *Client) Call(ctx context.Context, model, method string, args ...any) (any, error) {
	normalized := make([]any, len(args))
	for i, a := range args {
		normalized[i] = normalize(a)
	}
	return c.execute(ctx, model, method, normalized, nil, replayUndelivered)
}

// Authenticate logs in and caches the user id.
func (c *Client) Authenticate(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 {
		return c.uid, nil
	}

	result, err := c.call(ctx, "common", "login", []any{c.cfg.Database, c.cfg.Username, c.cfg.Password}, replaySafe)
	if err != nil {
		return 0, err
	}
	if ok, isBool := result.(bool); isBool && !ok {
		return 0, fmt.Errorf("%w: authentication failed for %s", domain.ErrExternalRejected, c.cfg.Username)
	}

	uid, err := toInt64(result)
	if err != nil {
		return 0, err
	}

	c.uid = uid
	c.logger.Info().Int64("uid", uid).Str("database", c.cfg.Database).Msg("erp session established")
	return uid, nil
}

func (c *Client) execute(ctx context.Context, model, method string, args []any, kwargs map[string]any, mode replay) (any, error) {
	uid, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	params := []any{c.cfg.Database, uid, c.cfg.Password, model, method, args}
	if len(kwargs) > 0 {
		params = append(params, kwargs)
	}

	start := time.Now()
	result, err := c.call(ctx, "object", "execute_kw", params, mode)
	c.observer.ObserveERPCall(model, method, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", model, method, err)
	}
	return result, nil
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result any       `json:"result"`
	Error  *RPCError `json:"error"`
}

// call performs one JSON-RPC request, retrying transport failures that mode
// allows.
func (c *Client) call(ctx context.Context, service, method string, args []any, mode replay) (any, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrPreconditionViolation, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 5 * time.Second

	var result any
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		res, err := c.roundTrip(ctx, body)
		if err == nil {
			result = res
			return nil
		}
		if !retryable(err, mode) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		c.logger.Warn().
			Err(err).
			Str("service", service).
			Str("method", method).
			Int("attempt", attempt).
			Msg("erp call failed, retrying")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx))

	return result, err
}

func (c *Client) roundTrip(ctx context.Context, body []byte) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classify(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPreconditionViolation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var out rpcResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, classify(fmt.Errorf("decode response: %w", err))
	}
	if out.Error != nil {
		return nil, out.Error
	}

	return out.Result, nil
}
