package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultBroadcastURL = "https://api.line.me/v2/bot/message/broadcast"

var ErrDeliveryFailed = fmt.Errorf("line broadcast rejected")

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type broadcastRequest struct {
	Messages []textMessage `json:"messages"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// BroadcastClient sends text messages to every friend of a LINE official account.
type BroadcastClient struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
}

func NewBroadcastClient(httpClient *http.Client, endpoint, accessToken string) *BroadcastClient {
	if endpoint == "" {
		endpoint = DefaultBroadcastURL
	}
	return &BroadcastClient{
		httpClient:  httpClient,
		endpoint:    endpoint,
		accessToken: accessToken,
	}
}

func (c *BroadcastClient) Name() string { return "line" }

func (c *BroadcastClient) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(broadcastRequest{
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("broadcast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, readErrorMessage(resp.Body))
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(raw))
}
