// Package uxtriage provides a client for the uxtriage assistant API.
package uxtriage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Client is a uxtriage API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new uxtriage client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("UXTRIAGE_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 180 * time.Second},
	}
}

// doRequest performs an HTTP request.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("uxtriage error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// ChatRequest is the request body for a conversation turn.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// ChatResponse is the response from a conversation turn.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
}

// Chat sends one message to the assistant. Pass an empty conversationID to
// start a new conversation; the returned ID continues it.
func (c *Client) Chat(conversationID, message string) (*ChatResponse, error) {
	req := ChatRequest{ConversationID: conversationID, Message: message}
	reqBody, _ := json.Marshal(req)

	respBody, err := c.doRequest("POST", "/chat", reqBody)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Issue is a recorded UX issue returned by Find.
type Issue struct {
	Product        string `json:"product"`
	Screen         string `json:"screen"`
	Symptom        string `json:"symptom"`
	RootCause      string `json:"root_cause"`
	Recommendation string `json:"recommendation"`
	Metric         string `json:"metric"`
}

// FindResponse is the response from the issue search endpoint.
type FindResponse struct {
	Query   string  `json:"query"`
	Results []Issue `json:"results"`
	Total   int     `json:"total"`
}

// Find searches the issue database directly, bypassing the assistant.
func (c *Client) Find(query string, limit int) (*FindResponse, error) {
	path := fmt.Sprintf("/find?q=%s", url.QueryEscape(query))
	if limit > 0 {
		path += fmt.Sprintf("&limit=%d", limit)
	}

	respBody, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp FindResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version"`
	Conversations int                    `json:"conversations"`
	Checks        map[string]interface{} `json:"checks"`
	Timestamp     string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
