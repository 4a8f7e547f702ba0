package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	BaseURL   string        `json:"baseUrl"`
	SecretKey string        `json:"secretKey"`
	Timeout   time.Duration `json:"timeout"`
}

type Client struct {
	// baseURL is the Paystack API root, without a trailing slash.
	baseURL string

	// secretKey authenticates every request as a Bearer token.
	secretKey string

	// hc is the http client.
	hc *http.Client
}

// NewClient creates new instance of Paystack client.
func NewClient(c *Config) *Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(c.BaseURL, "/"),
		secretKey: c.SecretKey,
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx reply from Paystack.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: status %d: %s", e.StatusCode, e.Message)
}

type InitializeParams struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Transaction struct {
	ID              int64      `json:"id"`
	Status          string     `json:"status"`
	Reference       string     `json:"reference"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	GatewayResponse string     `json:"gateway_response"`
	PaidAt          *time.Time `json:"paid_at"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction opens a checkout session.
func (c *Client) InitializeTransaction(ctx context.Context, p *InitializeParams) (*InitializeData, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: json.Marshal: %w", err)
	}

	var data InitializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, fmt.Errorf("initializeTransaction: %w", err)
	}
	return &data, nil
}

// VerifyTransaction fetches the charge for reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	var txn Transaction
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, nil, &txn); err != nil {
		return nil, fmt.Errorf("verifyTransaction: %w", err)
	}
	return &txn, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("http.NewReq: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	var reply envelope
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("json.Decode: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !reply.Status {
		code := resp.StatusCode
		if code < http.StatusBadRequest {
			code = http.StatusBadRequest
		}
		return &APIError{StatusCode: code, Message: reply.Message}
	}

	if err := json.Unmarshal(reply.Data, out); err != nil {
		return fmt.Errorf("json.Unmarshal data: %w", err)
	}
	return nil
}
