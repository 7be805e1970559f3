// Package line is a minimal LINE Messaging API client: reply and push of
// text messages plus webhook signature validation. Only what the bot needs,
// not a full SDK.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.line.me"
	defaultTimeout = 10 * time.Second

	// Messages above the API limit are cut hard with a truncation notice.
	maxMessageRunes  = 5000
	truncateAt       = 4900
	truncationNotice = "\n\n⚠️ 內容過長已截斷"
)

// Client calls the LINE Messaging API.
type Client struct {
	channelToken string
	baseURL      string
	httpClient   *http.Client
}

// NewClient creates a client with the given channel access token.
func NewClient(channelToken string) *Client {
	return &Client{
		channelToken: channelToken,
		baseURL:      defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(channelToken, baseURL string) *Client {
	c := NewClient(channelToken)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Reply answers a webhook event using its reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	return c.post(ctx, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: Truncate(text)}},
	})
}

// Push sends an unsolicited message to a user, used for price alerts.
func (c *Client) Push(ctx context.Context, userID, text string) error {
	return c.post(ctx, "/v2/bot/message/push", pushRequest{
		To:       userID,
		Messages: []textMessage{{Type: "text", Text: Truncate(text)}},
	})
}

// Truncate enforces the text message size limit.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	return string(runes[:truncateAt]) + truncationNotice
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("line api status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
