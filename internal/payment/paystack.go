// Package payment wraps the Paystack transaction API: initialize returns a
// hosted checkout URL plus a reference, verify settles that reference.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrGateway = errors.New("payment: gateway error")

type Client struct {
	httpClient *http.Client
	baseURL    string
	secret     string
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		secret:     secret,
	}
}

type InitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    InitResult `json:"data"`
}

// Initialize creates a payment session. amountMinor is in the minor currency
// unit (cents for KES).
func (c *Client) Initialize(ctx context.Context, email string, amountMinor int64) (InitResult, error) {
	body := map[string]any{
		"email":    email,
		"amount":   amountMinor,
		"currency": "KES",
	}
	b, err := json.Marshal(body)
	if err != nil {
		return InitResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", strings.NewReader(string(b)))
	if err != nil {
		return InitResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return InitResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return InitResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return InitResult{}, fmt.Errorf("%w: initialize returned %d: %s", ErrGateway, resp.StatusCode, raw)
	}

	var out initResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return InitResult{}, fmt.Errorf("decode initialize response: %w", err)
	}
	if !out.Status {
		return InitResult{}, fmt.Errorf("%w: %s", ErrGateway, out.Message)
	}
	return out.Data, nil
}

type VerifyResult struct {
	Success bool
	Status  string // "success", "failed", "abandoned", ...
	Amount  int64  // minor unit
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}

// Verify checks the outcome of a reference. A reachable gateway reporting a
// failed charge is not an error; the caller reads Success.
func (c *Client) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return VerifyResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return VerifyResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return VerifyResult{}, fmt.Errorf("%w: verify returned %d: %s", ErrGateway, resp.StatusCode, raw)
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return VerifyResult{}, fmt.Errorf("decode verify response: %w", err)
	}
	if !out.Status {
		return VerifyResult{}, fmt.Errorf("%w: %s", ErrGateway, out.Message)
	}
	return VerifyResult{
		Success: out.Data.Status == "success",
		Status:  out.Data.Status,
		Amount:  out.Data.Amount,
	}, nil
}
