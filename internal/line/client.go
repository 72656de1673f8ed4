package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client is a minimal LINE Messaging API client.
type Client struct {
	httpClient   *http.Client
	channelToken string
	baseURL      string
}

// NewClient constructs a LINE API client authorized with the channel access token.
func NewClient(httpClient *http.Client, channelToken string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient:   httpClient,
		channelToken: channelToken,
		baseURL:      "https://api.line.me/v2/bot",
	}
}

// Profile is the platform snapshot of a LINE account.
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl"`
	StatusMessage string `json:"statusMessage"`
}

// Reply sends messages using a one-time reply token from a webhook event.
func (c *Client) Reply(ctx context.Context, replyToken string, msgs ...Message) error {
	payload := map[string]interface{}{
		"replyToken": replyToken,
		"messages":   msgs,
	}
	return c.post(ctx, "/message/reply", payload, "")
}

// Push sends messages addressed by the persistent user id. A retry key makes
// the call idempotent on the platform side if it has to be repeated.
func (c *Client) Push(ctx context.Context, to string, msgs ...Message) error {
	payload := map[string]interface{}{
		"to":       to,
		"messages": msgs,
	}
	return c.post(ctx, "/message/push", payload, uuid.NewString())
}

// GetProfile fetches the user's current display name, avatar and status text.
func (c *Client) GetProfile(ctx context.Context, userID string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/profile/"+userID, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Profile{}, fmt.Errorf("line: profile fetch unexpected status %s", resp.Status)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, retryKey string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)
	if retryKey != "" {
		req.Header.Set("X-Line-Retry-Key", retryKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("line: %s unexpected status %s", path, resp.Status)
	}
	return nil
}
