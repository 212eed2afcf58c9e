// Package convai is a client for the ElevenLabs conversational-agent
// API: issuing signed session URLs for a configured agent and fetching
// conversation details.
package convai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Client calls the ElevenLabs conversational AI endpoints
type Client struct {
	apiKey     string
	agentID    string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new conversational-agent client. An empty baseURL
// selects the production endpoint.
func NewClient(apiKey, agentID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		agentID:    agentID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetSignedURL requests a signed session URL for the configured agent
func (c *Client) GetSignedURL(ctx context.Context) (string, error) {
	if c.agentID == "" {
		return "", fmt.Errorf("agent id is not configured")
	}

	endpoint := fmt.Sprintf("%s/v1/convai/conversation/get-signed-url?agent_id=%s",
		c.baseURL, url.QueryEscape(c.agentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request signed url: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signed url request returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		SignedURL string `json:"signed_url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse signed url response: %w", err)
	}
	if parsed.SignedURL == "" {
		return "", fmt.Errorf("signed url missing from response")
	}

	return parsed.SignedURL, nil
}

// GetConversationDetails fetches provider-side details for a conversation
func (c *Client) GetConversationDetails(ctx context.Context, conversationID string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/v1/convai/conversations/%s", c.baseURL, url.PathEscape(conversationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request conversation details: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conversation details returned status %d: %s", resp.StatusCode, string(body))
	}

	var details map[string]interface{}
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to parse conversation details: %w", err)
	}

	return details, nil
}
