package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ewait/internal/shared/config"
)

var ErrSMSNotConfigured = errors.New("SMS not configured")

// SMSSender sends one plain-text SMS and returns the provider message id
type SMSSender interface {
	Send(ctx context.Context, to, message string) (string, error)
}

// NewSMSSender returns a Termii sender, or a log-only sender when no API key is set
func NewSMSSender(cfg config.SMSConfig) SMSSender {
	if cfg.APIKey == "" {
		slog.Warn("TERMII_API_KEY not set, SMS will only be logged")
		return &logSender{}
	}
	return NewTermiiSender(cfg)
}

type TermiiSender struct {
	apiKey   string
	senderID string
	baseURL  string
	client   *http.Client
}

func NewTermiiSender(cfg config.SMSConfig) *TermiiSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TermiiSender{
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type termiiRequest struct {
	APIKey  string `json:"api_key"`
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

type termiiResponse struct {
	MessageID string  `json:"message_id"`
	Message   string  `json:"message"`
	Balance   float64 `json:"balance"`
	User      string  `json:"user"`
}

func (s *TermiiSender) Send(ctx context.Context, to, message string) (string, error) {
	body, err := json.Marshal(termiiRequest{
		APIKey:  s.apiKey,
		To:      NormalizePhone(to),
		From:    s.senderID,
		SMS:     message,
		Type:    "plain",
		Channel: "generic",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sms/send", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read sms response: %w", err)
	}

	var result termiiResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && result.MessageID != "" {
		return result.MessageID, nil
	}

	if result.Message != "" {
		return "", fmt.Errorf("termii: %s (status %d)", result.Message, resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("termii: failed to send SMS (status %d): unreadable response: %w", resp.StatusCode, decodeErr)
	}
	return "", fmt.Errorf("termii: failed to send SMS (status %d)", resp.StatusCode)
}

// NormalizePhone converts local Nigerian numbers to the 234 international form
func NormalizePhone(phone string) string {
	phone = strings.Join(strings.Fields(phone), "")
	phone = strings.TrimPrefix(phone, "+")
	if strings.HasPrefix(phone, "0") {
		phone = "234" + phone[1:]
	}
	if !strings.HasPrefix(phone, "234") {
		phone = "234" + phone
	}
	return phone
}

type logSender struct{}

func (logSender) Send(ctx context.Context, to, message string) (string, error) {
	slog.InfoContext(ctx, "SMS not configured, message logged only",
		slog.String("to", NormalizePhone(to)),
		slog.String("sms", message),
	)
	return "", ErrSMSNotConfigured
}

// SMSDelivery renders a notification and sends it as an SMS
type SMSDelivery struct {
	sender SMSSender
	appURL string
}

func NewSMSDelivery(sender SMSSender, appURL string) *SMSDelivery {
	return &SMSDelivery{sender: sender, appURL: appURL}
}

func (d *SMSDelivery) Deliver(ctx context.Context, n Notification) error {
	if n.Phone == "" {
		return nil
	}

	message, err := Render(n, d.appURL)
	if err != nil {
		return err
	}

	messageID, err := d.sender.Send(ctx, n.Phone, message)
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "SMS sent",
		slog.String("kind", string(n.Kind)),
		slog.String("entry_id", n.EntryID.String()),
		slog.String("message_id", messageID),
	)
	return nil
}
