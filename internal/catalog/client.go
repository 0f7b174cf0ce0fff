package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the sheet backend. The backend owns authorization and the
// spreadsheet API; this client only sees its narrow JSON contract.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type readSheetResponse struct {
	Data struct {
		Values [][]string `json:"values"`
	} `json:"data"`
}

// Fetch reads the whole sheet and parses it into a typed snapshot.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	var resp readSheetResponse
	if err := c.post(ctx, "/readSheet", nil, &resp); err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return ParseValues(resp.Data.Values), nil
}

type updateStockRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// DecrementStock asks the backend to reduce stock-on-hand for one product.
// The backend clamps at zero; per-item failures surface as errors here.
func (c *Client) DecrementStock(ctx context.Context, code string, qty int) error {
	if err := c.post(ctx, "/updateStock", updateStockRequest{ID: code, Quantity: qty}, nil); err != nil {
		return fmt.Errorf("update stock %s: %w", code, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
