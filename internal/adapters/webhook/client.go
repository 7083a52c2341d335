package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cfpboard/internal/domain"
)

type httpClient struct {
	client *http.Client
	url    string
}

// NewHTTPClient returns a TransitionWebhook that POSTs each event as JSON to
// the given URL. A nil client falls back to http.DefaultClient.
func NewHTTPClient(client *http.Client, url string) domain.TransitionWebhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{client: client, url: url}
}

func (c *httpClient) Notify(ctx context.Context, event *domain.TalkTransitionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status: %d", resp.StatusCode)
	}
	return nil
}
