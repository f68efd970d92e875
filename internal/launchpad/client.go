// internal/launchpad/client.go
package launchpad

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	rateLimit      = 300 // requests per minute
	requestTimeout = 15 * time.Second
	maxAttempts    = 3
)

// Client talks to the launchpad REST API. Transport failures and 5xx
// answers are retried with exponential backoff; 4xx answers and
// success=false envelopes are not, since resending the same request
// cannot change them.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	logger      *zap.Logger
	rateLimiter *time.Ticker
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL:     baseURL,
		apiKey:      apiKey,
		logger:      logger.Named("launchpad-api"),
		rateLimiter: time.NewTicker(time.Minute / rateLimit),
	}
}

// GetLaunchConfig returns the creator's existing launch configuration
// or ErrConfigNotFound when none has been created yet.
func (c *Client) GetLaunchConfig(ctx context.Context, wallet string) (*ConfigResponse, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/api/creators/"+url.PathEscape(wallet)+"/config", nil, "")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ConfigResponse
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config response: %w", err)
	}
	return &cfg, nil
}

// CreateLaunchConfig asks the API to build the configuration-creation
// transaction for the wallet and split.
func (c *Client) CreateLaunchConfig(ctx context.Context, req CreateConfigRequest) (*ConfigResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode config request: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/api/config", payload, "application/json")
	if err != nil {
		return nil, err
	}

	var cfg ConfigResponse
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config response: %w", err)
	}
	return &cfg, nil
}

// UploadTokenMetadata pushes the token profile and its image to the
// metadata store and returns the resulting URIs.
func (c *Client) UploadTokenMetadata(ctx context.Context, meta TokenMetadata, imageName string, image []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", imageName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	fields := map[string]string{
		"name":        meta.Name,
		"symbol":      meta.Symbol,
		"description": meta.Description,
		"twitter":     meta.Twitter,
		"telegram":    meta.Telegram,
		"website":     meta.Website,
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/api/ipfs", buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &result, nil
}

// LookupFeeShareWallet resolves a social handle to the wallet its
// owner registered for fee sharing.
func (c *Client) LookupFeeShareWallet(ctx context.Context, handle string) (string, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/api/fee-share/"+url.PathEscape(handle), nil, "")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", ErrPartnerWalletNotFound, handle)
		}
		return "", err
	}

	var resp feeShareWalletResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode fee-share wallet response: %w", err)
	}
	if resp.Wallet == "" {
		return "", fmt.Errorf("%w: %s", ErrPartnerWalletNotFound, handle)
	}
	return resp.Wallet, nil
}

// CreateFeeShareConfig submits the two-way distribution. The response
// may omit the transaction when the distribution already exists.
func (c *Client) CreateFeeShareConfig(ctx context.Context, req CreateFeeShareRequest) (*FeeShareResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode fee-share request: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/api/fee-share", payload, "application/json")
	if err != nil {
		return nil, err
	}

	var resp FeeShareResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode fee-share response: %w", err)
	}
	return &resp, nil
}

// CreateLaunchTransaction asks the API to build the pool-creation
// transaction for the new mint.
func (c *Client) CreateLaunchTransaction(ctx context.Context, req CreateLaunchRequest) (*LaunchResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode launch request: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/api/launch", payload, "application/json")
	if err != nil {
		return nil, err
	}

	var resp LaunchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode launch response: %w", err)
	}
	if resp.Transaction == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "launch response carried no transaction"}
	}
	return &resp, nil
}

// GetPositions lists the creator's fee-bearing positions. A non-empty
// mint narrows the answer to that token.
func (c *Client) GetPositions(ctx context.Context, wallet string, mint string) ([]Position, error) {
	path := "/api/creators/" + url.PathEscape(wallet) + "/positions"
	if mint != "" {
		path += "?mint=" + url.QueryEscape(mint)
	}

	raw, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Positions []Position `json:"positions"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode positions response: %w", err)
	}
	return resp.Positions, nil
}

// CreateClaimTransactions returns the serialized transactions needed
// to claim one position's accumulated fees. Zero transactions means
// there is nothing to claim right now.
func (c *Client) CreateClaimTransactions(ctx context.Context, req CreateClaimRequest) ([]string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode claim request: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/api/claim", payload, "application/json")
	if err != nil {
		return nil, err
	}

	var resp claimTransactionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode claim response: %w", err)
	}
	return resp.Transactions, nil
}

// doRequest выполняет HTTP запрос с учетом rate limit.
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte, contentType string) (json.RawMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter.C:
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 300 * time.Millisecond
	backoffPolicy.MaxInterval = 3 * time.Second

	notify := func(err error, duration time.Duration) {
		c.logger.Warn("Retrying launchpad API request",
			zap.String("path", path), zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (json.RawMessage, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &APIError{Status: resp.StatusCode, Message: string(data)}
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			if resp.StatusCode != http.StatusOK {
				return nil, backoff.Permanent(&APIError{Status: resp.StatusCode, Message: string(data)})
			}
			return nil, backoff.Permanent(fmt.Errorf("decode envelope: %w", err))
		}

		if !env.Success || resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(&APIError{Status: resp.StatusCode, Message: env.Error})
		}

		return env.Response, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(notify))
}
