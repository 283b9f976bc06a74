// Package huggingface calls a hosted zero-shot classification model.
package huggingface

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

var (
	// ErrEmptyInput is returned when the text or candidate labels are empty
	ErrEmptyInput = errors.New("text and candidate labels are required")
	// ErrUnexpectedResponse is returned when the model answers with an unknown shape
	ErrUnexpectedResponse = errors.New("unexpected classification response")
)

// Call outcomes reported to Config.OnCall
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeError   = "error"
)

// Config configures a Client
type Config struct {
	ModelURL       string
	APIKey         string
	Timeout        time.Duration // per HTTP attempt
	MaxRetries     int           // retries after the first attempt
	InitialBackoff time.Duration
	CacheTTL       time.Duration // 0 disables the result cache
	Rate           float64       // requests per second, 0 disables throttling

	// OnCall, if set, observes every Classify call
	OnCall func(outcome string, elapsed time.Duration)
}

// Client is a zero-shot classification client with retry, throttling and caching
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	results    *cache.Cache
}

// Classification is the model's score for each candidate label
type Classification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// LabelScore pairs a label with its score
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// StatusError is a non-2xx response from the model endpoint
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classification request failed with status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a classification client
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
	if cfg.Rate > 0 {
		burst := int(cfg.Rate)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	if cfg.CacheTTL > 0 {
		c.results = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// Classify scores each candidate label against text. With multiLabel the
// scores are independent; otherwise they sum to one.
func (c *Client) Classify(ctx context.Context, text string, labels []string, multiLabel bool) (*Classification, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(labels) == 0 {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	key := cacheKey(text, labels, multiLabel)
	if c.results != nil {
		if cached, found := c.results.Get(key); found {
			c.observe(OutcomeCached, start)
			return cached.(*Classification), nil
		}
	}

	result, err := c.classifyWithRetry(ctx, text, labels, multiLabel)
	if err != nil {
		c.observe(OutcomeError, start)
		return nil, err
	}

	if c.results != nil {
		c.results.SetDefault(key, result)
	}
	c.observe(OutcomeSuccess, start)
	return result, nil
}

func (c *Client) classifyWithRetry(ctx context.Context, text string, labels []string, multiLabel bool) (*Classification, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.cfg.InitialBackoff
	expBackoff.MaxInterval = 10 * time.Second

	attempt := 0
	operation := func() (*Classification, error) {
		attempt++
		result, err := c.classifyOnce(ctx, text, labels, multiLabel)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		log.Printf("⚠️  [CLASSIFIER] Attempt %d failed, retrying: %v", attempt, err)
		return nil, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
	)
}

type classifyRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters classifyParameter `json:"parameters"`
}

type classifyParameter struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

func (c *Client) classifyOnce(ctx context.Context, text string, labels []string, multiLabel bool) (*Classification, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	payload, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParameter{CandidateLabels: labels, MultiLabel: multiLabel},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ModelURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				log.Printf("⏳ [CLASSIFIER] Rate limited, model asked to wait %ds", secs)
			}
		}
		return nil, statusErr
	}

	return parseClassification(body, labels)
}

// parseClassification accepts {labels, scores} and [{label, score}] bodies.
func parseClassification(body []byte, labels []string) (*Classification, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedResponse
	}

	if trimmed[0] == '[' {
		var pairs []LabelScore
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			// Some deployments wrap the list once more
			var nested [][]LabelScore
			if nestedErr := json.Unmarshal(trimmed, &nested); nestedErr != nil || len(nested) == 0 {
				return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
			}
			pairs = nested[0]
		}
		result := &Classification{}
		for _, p := range pairs {
			result.Labels = append(result.Labels, p.Label)
			result.Scores = append(result.Scores, p.Score)
		}
		return result.validate(labels)
	}

	var result Classification
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return result.validate(labels)
}

func (c *Classification) validate(candidates []string) (*Classification, error) {
	if len(c.Labels) == 0 || len(c.Labels) != len(c.Scores) {
		return nil, ErrUnexpectedResponse
	}
	known := make(map[string]bool, len(candidates))
	for _, l := range candidates {
		known[l] = true
	}
	for _, l := range c.Labels {
		if !known[l] {
			return nil, fmt.Errorf("%w: unknown label %q", ErrUnexpectedResponse, l)
		}
	}
	return c, nil
}

// Ranked returns every label with its score, highest first.
func (c *Classification) Ranked() []LabelScore {
	ranked := make([]LabelScore, len(c.Labels))
	for i := range c.Labels {
		ranked[i] = LabelScore{Label: c.Labels[i], Score: c.Scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Best returns the highest-scoring label
func (c *Classification) Best() (LabelScore, bool) {
	if c == nil || len(c.Labels) == 0 {
		return LabelScore{}, false
	}
	return c.Ranked()[0], true
}

// Score returns the score of label, or 0 if the label was not scored
func (c *Classification) Score(label string) float64 {
	for i, l := range c.Labels {
		if l == label {
			return c.Scores[i]
		}
	}
	return 0
}

// retryable reports whether a failed attempt may succeed if repeated:
// throttling, overloaded or cold-starting models, and transport failures.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.cfg.OnCall != nil {
		c.cfg.OnCall(outcome, time.Since(start))
	}
}

func cacheKey(text string, labels []string, multiLabel bool) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(labels, "\x1f")))
	if multiLabel {
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
