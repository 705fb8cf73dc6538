package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.mercadopago.com"

// UpstreamError is any failure talking to the provider's read API: transport
// errors, timeouts and non-2xx responses alike. The client never retries;
// the provider's own redelivery is the retry mechanism.
type UpstreamError struct {
	Resource   string
	ID         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mercadopago: fetch %s %s: %v", e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("mercadopago: fetch %s %s: status %d", e.Resource, e.ID, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Preapproval is the subset of the provider's subscription resource the
// reconciliation engine needs.
type Preapproval struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	PayerEmail        string `json:"payer_email"`
	ExternalReference string `json:"external_reference"`
	PreapprovalPlanID string `json:"preapproval_plan_id"`
	Reason            string `json:"reason"`
}

// PaymentResource is the subset of the provider's payment resource the
// reconciliation engine needs.
type PaymentResource struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	PaymentMethodID   string          `json:"payment_method_id"`
	DateApproved      *time.Time      `json:"date_approved"`
	ExternalReference string          `json:"external_reference"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(accessToken string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   accessToken,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL exists for tests against a local server.
func NewClientWithBaseURL(accessToken, baseURL string) *Client {
	c := NewClient(accessToken)
	c.baseURL = baseURL
	return c
}

func (c *Client) GetPreapproval(ctx context.Context, id string) (*Preapproval, error) {
	var out Preapproval
	if err := c.get(ctx, "preapproval", id, fmt.Sprintf("%s/preapproval/%s", c.baseURL, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*PaymentResource, error) {
	var out PaymentResource
	if err := c.get(ctx, "payment", id, fmt.Sprintf("%s/v1/payments/%s", c.baseURL, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, resource, id, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &UpstreamError{Resource: resource, ID: id, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Resource: resource, ID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Resource: resource, ID: id, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Resource: resource, ID: id, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
