package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ewait/internal/shared/config"
)

var ErrGatewayRejected = errors.New("paystack rejected the request")

// Gateway is the subset of the Paystack transaction API the service uses
type Gateway interface {
	Initialize(ctx context.Context, params InitializeParams) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

type InitializeParams struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Customer struct {
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
}

// Transaction is the data object of verify responses and charge webhooks
type Transaction struct {
	Status    string    `json:"status"`
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	Customer  *Customer `json:"customer"`
}

func (t *Transaction) CustomerCode() string {
	if t.Customer == nil {
		return ""
	}
	return t.Customer.CustomerCode
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type PaystackClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystackClient(cfg config.PaystackConfig) *PaystackClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackClient{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *PaystackClient) Initialize(ctx context.Context, params InitializeParams) (*InitializeResult, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initialize request: %w", err)
	}

	var result InitializeResult
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	if result.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: missing authorization_url", ErrGatewayRejected)
	}
	return &result, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*Transaction, error) {
	var tx Transaction
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *PaystackClient) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read paystack response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode paystack response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Status {
		return fmt.Errorf("%w: %s (status %d)", ErrGatewayRejected, env.Message, resp.StatusCode)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode paystack data: %w", err)
	}
	return nil
}

// Sign returns the hex HMAC-SHA512 Paystack sends in x-paystack-signature
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time. Without a secret every signature is rejected.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(strings.ToLower(signature)))
}
