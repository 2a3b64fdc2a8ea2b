package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/config"
)

// PushMessage is one notification addressed to a device
type PushMessage struct {
	DeviceToken string `json:"device_token"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// BatchPushMessage is one notification addressed to many devices at once
type BatchPushMessage struct {
	DeviceTokens []string `json:"device_tokens"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
}

// PushSender delivers push messages to devices
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) error

	// SendBatch delivers one message to many devices in a single gateway
	// call
	SendBatch(ctx context.Context, msg BatchPushMessage) error
}

// HTTPPushSender posts messages to the push gateway, authenticating with a
// short-lived token from the injected cache
type HTTPPushSender struct {
	endpoint   string
	tokens     *TokenCache
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPPushSender creates a sender for the configured gateway
func NewHTTPPushSender(cfg *config.NotificationConfig, tokens *TokenCache, logger *zap.Logger) *HTTPPushSender {
	return &HTTPPushSender{
		endpoint: cfg.PushEndpoint,
		tokens:   tokens,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Send delivers one message. A 401 from the gateway invalidates the cached
// token and retries once with a fresh one.
func (s *HTTPPushSender) Send(ctx context.Context, msg PushMessage) error {
	return s.deliver(ctx, s.endpoint, msg)
}

// SendBatch delivers one message to many devices with a single gateway call
func (s *HTTPPushSender) SendBatch(ctx context.Context, msg BatchPushMessage) error {
	if len(msg.DeviceTokens) == 0 {
		return nil
	}
	return s.deliver(ctx, s.endpoint+"/batch", msg)
}

func (s *HTTPPushSender) deliver(ctx context.Context, url string, payload any) error {
	status, err := s.post(ctx, url, payload)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		s.tokens.Invalidate()
		status, err = s.post(ctx, url, payload)
		if err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("push gateway returned status %d", status)
	}
	return nil
}

func (s *HTTPPushSender) post(ctx context.Context, url string, payload any) (int, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to obtain push token: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

var _ PushSender = (*HTTPPushSender)(nil)
