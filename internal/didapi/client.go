package didapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"did-optimizer/internal/config"
)

const headerAPIKey = "x-api-key"

var (
	// ErrSelectionFailed means every attempt to obtain a DID was exhausted;
	// callers must substitute the configured fallback and keep the call moving.
	ErrSelectionFailed = errors.New("didapi: selection failed")

	// ErrReportFailed means every attempt to deliver a call result was
	// exhausted. There is no fallback for reporting; callers surface it.
	ErrReportFailed = errors.New("didapi: report failed")

	// ErrUnauthorized is returned without further retries on 401/403.
	// Retrying a rejected key burns the retry budget for nothing.
	ErrUnauthorized = errors.New("didapi: unauthorized")
)

// RetryPolicy bounds remote calls: up to MaxAttempts tries with a fixed
// Delay between them. Total wall clock stays under
// MaxAttempts * (timeout + Delay).
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.Delay < 0 {
		out.Delay = 0
	}
	return out
}

// Client talks to the remote DID selection service. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	policy  RetryPolicy

	// sleep is swapped out in tests to keep retry paths fast.
	sleep func(time.Duration)
}

func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.Key,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		policy:  RetryPolicy{MaxAttempts: cfg.MaxRetries, Delay: cfg.RetryDelay}.withDefaults(),
		sleep:   time.Sleep,
	}
}

// Policy exposes the effective retry policy (useful for logging bounds).
func (c *Client) Policy() RetryPolicy { return c.policy }

// NextDID asks the service for the optimal caller ID for this call.
func (c *Client) NextDID(ctx context.Context, req NextDIDRequest) (Selection, error) {
	q := url.Values{}
	q.Set("campaign_id", req.CampaignID)
	q.Set("agent_id", req.AgentID)
	q.Set("customer_phone", req.CustomerPhone)
	if req.Location.State != "" {
		q.Set("state", req.Location.State)
	}
	if req.Location.AreaCode != "" {
		q.Set("area_code", req.Location.AreaCode)
	}
	if req.Location.HasCoordinates {
		q.Set("latitude", strconv.FormatFloat(req.Location.Latitude, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(req.Location.Longitude, 'f', -1, 64))
	}
	endpoint := c.baseURL + "/dids/next?" + q.Encode()

	var out Selection
	err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, func(body []byte) error {
		var env selectionEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}
		if !env.ok() {
			return fmt.Errorf("server reported success=false")
		}
		sel, err := env.toSelection()
		if err != nil {
			return err
		}
		out = sel
		return nil
	})
	if err != nil {
		return Selection{}, errors.Join(ErrSelectionFailed, err)
	}
	return out, nil
}

// PostCallResult delivers one call outcome. At-least-once semantics: the
// server is assumed idempotent per logical submission.
func (c *Client) PostCallResult(ctx context.Context, res CallResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("didapi: encode call result: %w", err)
	}
	endpoint := c.baseURL + "/vicidial/call-result"

	err = c.do(ctx, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	}, func(body []byte) error {
		var env resultEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}
		if env.Success == nil || !*env.Success {
			return fmt.Errorf("server reported success=false")
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrReportFailed, err)
	}
	return nil
}

// do runs one logical remote call under the retry policy. build must return
// a fresh request per attempt (request bodies are single-use); decode is
// only called on 2xx and its error counts as a retryable failure, since a
// flaky upstream can intermittently return bad payloads.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error), decode func(body []byte) error) error {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			c.sleep(c.policy.Delay)
		}

		req, err := build()
		if err != nil {
			return err
		}
		req.Header.Set(headerAPIKey, c.apiKey)

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if err := decode(body); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("exhausted %d attempts: %w", c.policy.MaxAttempts, lastErr)
}
