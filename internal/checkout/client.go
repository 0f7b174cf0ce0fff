package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrasetia/go-sheet-storefront/internal/cart"
)

// Client creates payable sessions on the checkout backend. Payment itself is
// the backend's business; we only carry the line items and discount across
// and keep the returned references.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type createSessionRequest struct {
	Items    []cart.LineItem `json:"items"`
	Discount *cart.Discount  `json:"discount,omitempty"`
}

type createSessionResponse struct {
	SessionRef string `json:"session_ref"`
	ReceiptID  string `json:"receipt_id"`
}

func (c *Client) CreateSession(ctx context.Context, items []cart.LineItem, d *cart.Discount) (string, string, error) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(createSessionRequest{Items: items, Discount: d}); err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/checkout/sessions", &body)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("checkout session: unexpected status %d", resp.StatusCode)
	}
	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if out.SessionRef == "" {
		return "", "", fmt.Errorf("checkout session: empty session reference")
	}
	if out.ReceiptID == "" {
		// the summary and status tracking always need a key
		out.ReceiptID = uuid.NewString()
	}
	return out.SessionRef, out.ReceiptID, nil
}
