// Package chat proxies the shopper-assist conversation to a generative
// provider, with a canned fallback so the widget never errors out.
package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const fallbackReply = "Sorry, I could not reach the assistant just now. " +
	"You can browse products by category, or ask me again in a moment."

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type providerRequest struct {
	Messages []Message `json:"messages"`
}

type providerResponse struct {
	Reply string `json:"reply"`
}

// Reply sends the user message with rolling history and returns the assistant
// text. Provider failure falls back to a templated answer, never an error.
func (c *Client) Reply(ctx context.Context, message string, history []Message) string {
	if c.baseURL == "" {
		return fallbackReply
	}

	msgs := append(append([]Message{}, history...), Message{Role: "user", Content: message})
	body, err := json.Marshal(providerRequest{Messages: msgs})
	if err != nil {
		return fallbackReply
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", strings.NewReader(string(body)))
	if err != nil {
		return fallbackReply
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallbackReply
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return fallbackReply
	}

	var out providerResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.Reply == "" {
		return fallbackReply
	}
	return out.Reply
}

// Fallback exposes the canned reply for tests and for the handler's
// offline path.
func Fallback() string { return fallbackReply }
