package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EventView mirrors the API's event resource, the only shape the page
// server fetches itself; everything else loads client-side with the
// visitor's own token.
type EventView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"isActive"`
}

// APIClient is the web tier's REST consumer. The REST surface is the
// contract: the page server holds no database handle.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *APIClient) get(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ErrNotFound marks a 404 from the API so pages can render their own.
var ErrNotFound = fmt.Errorf("not found")

// ActiveEvents lists events currently accepting requests.
func (c *APIClient) ActiveEvents() ([]EventView, error) {
	var payload struct {
		Data []EventView `json:"data"`
	}
	if err := c.get("/api/event?active=true", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// EventBySlug resolves the QR landing URL.
func (c *APIClient) EventBySlug(slug string) (*EventView, error) {
	var event EventView
	if err := c.get("/api/event/slug/"+slug, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Healthy reports whether the API answers its ping.
func (c *APIClient) Healthy() bool {
	var payload struct {
		Status string `json:"status"`
	}
	return c.get("/api/ping", &payload) == nil && payload.Status == "ok"
}
