// Package payment proxies the external payment gateway. The core only
// needs one thing from it: whether a given order reference has settled.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Status is the gateway-side state of a transaction, mapped to the three
// values the ledger cares about.
type Status string

const (
	StatusSettled Status = "settled"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// ErrGatewayUnavailable means the gateway could not be reached or answered
// with a server error. Callers surface this as a retryable condition.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Gateway verifies payments for order references.
type Gateway interface {
	VerifyPayment(ctx context.Context, orderRef string) (Status, error)
}

// HTTPGateway talks to a Midtrans-style status endpoint with server-key
// basic auth.
type HTTPGateway struct {
	baseURL   string
	serverKey string
	client    *http.Client
}

// NewHTTPGateway creates a gateway client against the given base URL.
func NewHTTPGateway(baseURL, serverKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   baseURL,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// VerifyPayment fetches the transaction status for orderRef.
func (g *HTTPGateway) VerifyPayment(ctx context.Context, orderRef string) (Status, error) {
	url := fmt.Sprintf("%s/v2/%s/status", g.baseURL, orderRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusFailed, err
	}
	req.SetBasicAuth(g.serverKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return StatusFailed, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return StatusFailed, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return StatusFailed, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return StatusFailed, err
	}

	var statusResp struct {
		TransactionStatus string `json:"transaction_status"`
	}
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return StatusFailed, fmt.Errorf("error unmarshaling gateway response: %v", err)
	}

	return mapTransactionStatus(statusResp.TransactionStatus), nil
}

func mapTransactionStatus(s string) Status {
	switch s {
	case "capture", "settlement":
		return StatusSettled
	case "pending", "authorize":
		return StatusPending
	default:
		return StatusFailed
	}
}

// LocalGateway settles every verification. It exists for non-production
// diagnostics only and must never be configured for real order data.
type LocalGateway struct{}

// VerifyPayment always reports settled.
func (LocalGateway) VerifyPayment(ctx context.Context, orderRef string) (Status, error) {
	return StatusSettled, nil
}
