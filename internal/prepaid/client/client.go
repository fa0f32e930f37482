package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/oklog/ulid/v2"
	credentialdomain "github.com/smallbiznis/prepaid/internal/credential/domain"
	obscontext "github.com/smallbiznis/prepaid/internal/observability/context"
	"github.com/smallbiznis/prepaid/internal/observability/tracing"
	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// Config configures the prepaid history client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	BreakerEnabled bool
}

// Client calls the remote prepaid history endpoints.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	creds    credentialdomain.Resolver
	executor failsafe.Executor[*http.Response]
	log      *zap.Logger
}

// New builds a Client. httpClient may be nil; it is wrapped for tracing either way.
func New(cfg Config, httpClient *http.Client, creds credentialdomain.Resolver, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid prepaid api url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 12 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:  base,
		http:     tracing.WrapHTTPClient(httpClient),
		creds:    creds,
		executor: newExecutor(cfg),
		log:      log.Named("prepaid.client"),
	}, nil
}

// FetchHistory calls GET /prepaid/history/{customerId}[?contractId=].
func (c *Client) FetchHistory(ctx context.Context, customerID, contractID string) (domain.HistoryResponse, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.HistoryResponse{}, domain.ErrInvalidCustomer
	}

	query := url.Values{}
	if contractID = strings.TrimSpace(contractID); contractID != "" {
		query.Set("contractId", contractID)
	}
	return c.get(ctx, []string{"prepaid", "history", customerID}, query)
}

// FetchByContract calls GET /prepaid/contract/{contractId}.
func (c *Client) FetchByContract(ctx context.Context, contractID string) (domain.HistoryResponse, error) {
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return domain.HistoryResponse{}, domain.ErrInvalidContract
	}
	return c.get(ctx, []string{"prepaid", "contract", contractID}, nil)
}

func (c *Client) get(ctx context.Context, segments []string, query url.Values) (domain.HistoryResponse, error) {
	endpoint := c.baseURL.JoinPath(segments...)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	requestID := obscontext.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	token, authenticated := "", false
	if c.creds != nil {
		token, authenticated = c.creds.Resolve(ctx)
	}

	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", requestID)
		if authenticated {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return c.http.Do(req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		drain(resp)
		return domain.HistoryResponse{}, fmt.Errorf("%w: circuit open", domain.ErrTransport)
	}
	if resp == nil {
		return domain.HistoryResponse{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer drain(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Debug("prepaid history request rejected",
			zap.String("path", endpoint.Path),
			zap.Int("status", resp.StatusCode),
			zap.Bool("authenticated", authenticated),
		)
		return domain.HistoryResponse{}, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
	}

	return decodeEnvelope(io.LimitReader(resp.Body, maxBodyBytes))
}

type envelope struct {
	Success bool                    `json:"success"`
	Data    *[]domain.PrepaidRecord `json:"data"`
	Count   *int                    `json:"count"`
}

func decodeEnvelope(r io.Reader) (domain.HistoryResponse, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return domain.HistoryResponse{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if env.Data == nil {
		return domain.HistoryResponse{}, fmt.Errorf("%w: missing data", domain.ErrMalformedPayload)
	}

	records := *env.Data
	count := len(records)
	if env.Count != nil {
		count = *env.Count
	}
	return domain.HistoryResponse{
		Success: env.Success,
		Data:    records,
		Count:   count,
	}, nil
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}

var _ domain.RecordFetcher = (*Client)(nil)
