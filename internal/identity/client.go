// Package identity implements the HTTP client for the external identity
// lookup service.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"rbac-janitor/internal/domain"
)

const filteredPrincipalsPath = "/v1/principals/filtered"

// Options configures the identity client.
type Options struct {
	// Timeout bounds each lookup request. Zero defaults to 10s.
	Timeout time.Duration
	// RateLimitRPS throttles calls to the identity service. Zero disables
	// throttling.
	RateLimitRPS float64
	// RateLimitBurst is the throttle burst size (defaults to 1 when RPS set).
	RateLimitBurst int
}

// Client queries the identity service over HTTP. Transport failures and
// non-success responses are reported through the result status so that
// callers treat them as "unresolved, no change" rather than fatal errors.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client for the identity service at baseURL. token is
// the bearer token sent on each request; empty disables the header.
func NewClient(baseURL, token string, opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

type filteredRequest struct {
	UserIDs []string `json:"user_ids"`
	OrgID   string   `json:"org_id,omitempty"`
	Account string   `json:"account,omitempty"`
}

type filteredResponse struct {
	Data []struct {
		UserID string `json:"user_id"`
	} `json:"data"`
}

// QueryExisting asks the identity service which of the given user ids still
// exist for the tenant addressed by sel. The returned error is reserved for
// malformed input; remote failures surface as non-OK result statuses.
func (c *Client) QueryExisting(ctx context.Context, userIDs []string, sel domain.TenantSelector) (domain.LookupResult, error) {
	if sel.OrgID == "" && sel.Account == "" {
		return domain.LookupResult{}, domain.ErrValidation("tenant selector must set org_id or account")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.LookupResult{Status: domain.LookupStatusTimeout}, nil
		}
	}

	body, err := json.Marshal(filteredRequest{
		UserIDs: userIDs,
		OrgID:   sel.OrgID,
		Account: sel.Account,
	})
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+filteredPrincipalsPath, bytes.NewReader(body))
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status := domain.LookupStatusUnavailable
		var uerr *url.Error
		if ctx.Err() != nil || (errors.As(err, &uerr) && uerr.Timeout()) {
			status = domain.LookupStatusTimeout
		}
		c.logger.Warn("identity lookup request failed", "status", status, "error", err)
		return domain.LookupResult{Status: status}, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var out filteredResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			c.logger.Warn("identity lookup returned malformed body", "error", err)
			return domain.LookupResult{Status: domain.LookupStatusUnexpected}, nil
		}
		existing := make(map[string]struct{}, len(out.Data))
		for _, u := range out.Data {
			existing[u.UserID] = struct{}{}
		}
		return domain.LookupResult{Status: domain.LookupStatusOK, Existing: existing}, nil

	case resp.StatusCode >= 500:
		c.logger.Warn("identity lookup unavailable", "http_status", resp.StatusCode)
		return domain.LookupResult{Status: domain.LookupStatusUnavailable}, nil

	default:
		c.logger.Warn("identity lookup returned unexpected status", "http_status", resp.StatusCode)
		return domain.LookupResult{Status: domain.LookupStatusUnexpected}, nil
	}
}

var _ domain.IdentityLookup = (*Client)(nil)
