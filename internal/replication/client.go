package replication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"replikv/internal/domain"
)

// HTTPClient delivers replication messages over the followers' /replicate
// endpoint. One instance is shared by all concurrent dispatches; the
// underlying transport pools connections per follower.
type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *HTTPClient) Replicate(ctx context.Context, followerURL string, msg domain.ReplicationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode replication message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, followerURL+"/replicate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build replication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("follower returned %s", resp.Status)
	}

	var ack struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("decode replication ack: %w", err)
	}
	if ack.Status != "replicated" {
		return fmt.Errorf("unexpected ack status %q", ack.Status)
	}

	return nil
}
