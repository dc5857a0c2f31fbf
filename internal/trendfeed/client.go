// Package trendfeed scrapes the state election commission's live trend
// pages into trend CSV rows.
package trendfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/metrics"
	"golang.org/x/time/rate"
)

var ErrUnexpectedStatus = errors.New("unexpected feed status")

const (
	stateViewPath = "/includes/stateView2_ajax.php"
	lbViewPath    = "/includes/lb_ajax2.php"
)

// District is one of the fourteen revenue districts as the feed names them.
type District struct {
	Code string
	Name string
}

var Districts = []District{
	{"D01001", "Thiruvananthapuram"},
	{"D02001", "Kollam"},
	{"D03001", "Pathanamthitta"},
	{"D04001", "Alappuzha"},
	{"D05001", "Kottayam"},
	{"D06001", "Idukki"},
	{"D07001", "Ernakulam"},
	{"D08001", "Thrissur"},
	{"D09001", "Palakkad"},
	{"D10001", "Malappuram"},
	{"D11001", "Kozhikode"},
	{"D12001", "Wayanad"},
	{"D13001", "Kannur"},
	{"D14001", "Kasaragod"},
}

// RequestTypes are the feed's tier parameters: grama (P), block (B),
// district (D) and urban (C) bodies.
var RequestTypes = []string{"P", "B", "D", "C"}

// RequestType maps a local-body code prefix to the feed's tier parameter.
func RequestType(prefix string) string {
	switch prefix {
	case "G":
		return "P"
	case "M":
		return "C"
	}
	return prefix
}

type LocalBody struct {
	Code string
	Name string
}

type Ward struct {
	Code   string
	Number int
	Name   string
}

// Candidate is one row of a ward's candidate list.
type Candidate struct {
	Party   string
	Code    string
	Name    string
	Votes   int
	Leading bool
	Won     bool
}

// Client talks to the trend feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	workers    int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithWorkers bounds how many local bodies are scraped at once.
func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(20), 5),
		maxRetries: 3,
		backoff:    time.Second,
		workers:    5,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// LocalBodies lists the bodies of one tier in a district.
func (c *Client) LocalBodies(ctx context.Context, districtCode, reqType string) ([]LocalBody, error) {
	rows, err := c.post(ctx, "localbodies", stateViewPath, url.Values{
		"_p": {"dv"},
		"_l": {reqType},
		"_d": {districtCode},
		"_s": {"L"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]LocalBody, 0, len(rows))
	for _, r := range rows {
		code := cell(r, 0)
		if code == "" {
			continue
		}
		out = append(out, LocalBody{Code: code, Name: cell(r, 1)})
	}
	return out, nil
}

// Wards lists the wards of a local body.
func (c *Client) Wards(ctx context.Context, lbCode, reqType string) ([]Ward, error) {
	rows, err := c.post(ctx, "wards", lbViewPath, url.Values{
		"_p": {"wv"},
		"_w": {lbCode},
		"_t": {reqType},
		"_s": {"L"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]Ward, 0, len(rows))
	for _, r := range rows {
		code := cell(r, 0)
		if code == "" {
			continue
		}
		out = append(out, Ward{Code: code, Number: WardNumber(code), Name: cell(r, 5)})
	}
	return out, nil
}

// WardNumber reads the ward number from characters 6..9 of a full ward id.
// Shorter ids are read whole.
func WardNumber(wardID string) int {
	s := wardID
	if len(wardID) >= 9 {
		s = wardID[6:9]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Candidates lists the candidates of a ward with their tallies and markers.
func (c *Client) Candidates(ctx context.Context, wardCode, reqType string) ([]Candidate, error) {
	rows, err := c.post(ctx, "candidates", lbViewPath, url.Values{
		"_p": {"can"},
		"_w": {wardCode},
		"_t": {reqType},
		"_s": {"L"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		votes, _ := strconv.Atoi(cell(r, 4))
		out = append(out, Candidate{
			Party:   cell(r, 0),
			Code:    cell(r, 1),
			Name:    strings.TrimSpace(cell(r, 2) + " " + cell(r, 3)),
			Votes:   votes,
			Leading: cell(r, 5) == "1",
			Won:     cell(r, 6) == "Y",
		})
	}
	return out, nil
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type envelope struct {
	Payload [][]any `json:"payload"`
}

// post sends a form request and returns its payload rows, retrying 429 and
// 5xx responses with exponential backoff.
func (c *Client) post(ctx context.Context, op, path string, form url.Values) ([][]any, error) {
	u := c.baseURL + path
	params := make(map[string]string, len(form))
	for k := range form {
		params[k] = form.Get(k)
	}
	logger.FeedRequest(op, u, params)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		rows, retry, err := c.do(ctx, op, u, form)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}

	metrics.FeedRequestsTotal.WithLabelValues(op, "error").Inc()
	logger.FeedError(op, lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, op, u string, form url.Values) (rows [][]any, retry bool, err error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", "LSG-Trends/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("trend feed request: %w", err)
	}
	defer resp.Body.Close()
	metrics.FeedDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s %d", ErrUnexpectedStatus, op, resp.StatusCode)
		return nil, retryable(resp.StatusCode), err
	}

	var env envelope
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", op, err)
	}

	metrics.FeedRequestsTotal.WithLabelValues(op, "ok").Inc()
	logger.FeedResponse(op, resp.StatusCode, time.Since(start), len(env.Payload))
	return env.Payload, false, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
