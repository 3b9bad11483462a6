// Package homeassistant calls a customer's home-automation webhook and
// decodes the results it posts back.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

var ErrNoWebhook = errors.New("home automation webhook not configured")

// Request is the body posted to the webhook. The webhook answers
// asynchronously by posting a Callback to CallbackURL.
type Request struct {
	Method         string         `json:"method"`
	Phone          string         `json:"phone"`
	ConversationID string         `json:"conversation_id"`
	CallbackURL    string         `json:"callback_url,omitempty"`
	CallbackToken  string         `json:"callback_token,omitempty"`
	Params         map[string]any `json:"params,omitempty"`
}

// Response is the synchronous answer of the webhook. Data is nil when the
// webhook acknowledged without a JSON body.
type Response struct {
	Data json.RawMessage
}

type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// Call posts req to webhookURL with a bearer token.
func (c *Client) Call(ctx context.Context, webhookURL, token string, req Request) (*Response, error) {
	if webhookURL == "" {
		return nil, ErrNoWebhook
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call home automation webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug("home automation webhook answered",
		"method", req.Method,
		"status", resp.StatusCode,
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("home automation webhook status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	out := &Response{}
	if json.Valid(body) {
		out.Data = json.RawMessage(body)
	}
	return out, nil
}

// Trigger adapts Call to the domain webhook port.
func (c *Client) Trigger(ctx context.Context, cfg domain.AutomationConfig, call domain.AutomationCall) error {
	_, err := c.Call(ctx, cfg.WebhookURL, cfg.Token, Request{
		Method:         call.Method,
		Phone:          call.Phone,
		ConversationID: string(call.ConversationID),
		CallbackURL:    call.CallbackURL,
		CallbackToken:  call.CallbackToken,
		Params:         call.Params,
	})
	return err
}

var _ domain.AutomationWebhook = (*Client)(nil)
