// README: Checkout session client for the external payment provider.
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrPaymentFailed = errors.New("payment session failed")

// CheckoutRequest describes one ride payment. Amount is in the major
// currency unit; the provider is sent cents.
type CheckoutRequest struct {
	Amount    float64           `json:"amount"`
	ReturnURL string            `json:"returnUrl"`
	Metadata  map[string]string `json:"meetingDetails"`
}

type checkoutPayload struct {
	AmountCents int64             `json:"unit_amount"`
	Currency    string            `json:"currency"`
	ProductName string            `json:"product_name"`
	SuccessURL  string            `json:"success_url"`
	Metadata    map[string]string `json:"metadata"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// PaymentClient creates hosted checkout sessions against the configured
// provider endpoint and hands the redirect URL back to the caller.
type PaymentClient struct {
	providerURL string
	http        *http.Client
}

func NewPaymentClient(providerURL string) *PaymentClient {
	return &PaymentClient{
		providerURL: providerURL,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateSession returns the URL the rider is redirected to for payment.
func (c *PaymentClient) CreateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if c == nil || c.providerURL == "" {
		return "", fmt.Errorf("%w: no provider configured", ErrPaymentFailed)
	}
	if req.Amount <= 0 || req.ReturnURL == "" {
		return "", fmt.Errorf("%w: amount and returnUrl are required", ErrBadRequest)
	}

	body, err := json.Marshal(checkoutPayload{
		AmountCents: int64(req.Amount * 100),
		Currency:    "usd",
		ProductName: "On Ride",
		SuccessURL:  req.ReturnURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("encode checkout payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.providerURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider returned %d", ErrPaymentFailed, resp.StatusCode)
	}
	var out checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: bad provider response: %v", ErrPaymentFailed, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("%w: provider returned no redirect url", ErrPaymentFailed)
	}
	return out.URL, nil
}
