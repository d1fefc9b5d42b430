package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewait/internal/shared/config"
)

func TestSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := Sign("sk_test", body)

	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature("sk_test", body, sig))
	assert.False(t, VerifySignature("sk_other", body, sig))
	assert.False(t, VerifySignature("sk_test", []byte(`{}`), sig))
	assert.False(t, VerifySignature("sk_test", body, ""))
	assert.False(t, VerifySignature("", body, Sign("", body)))
}

func TestPaystackInitialize(t *testing.T) {
	var got InitializeParams
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: srv.URL + "/"})
	result, err := client.Initialize(context.Background(), InitializeParams{
		Email:       "owner@example.com",
		Amount:      500000,
		Reference:   "ref-1",
		CallbackURL: "http://app/admin/billing/callback",
		Metadata:    map[string]interface{}{"plan": "STARTER"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc", result.AuthorizationURL)
	assert.Equal(t, int64(500000), got.Amount)
	assert.Equal(t, "http://app/admin/billing/callback", got.CallbackURL)
	assert.Equal(t, "STARTER", got.Metadata["plan"])
}

func TestPaystackVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","reference":"ref-1","amount":500000,"customer":{"email":"owner@example.com","customer_code":"CUS_x"}}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: srv.URL})
	tx, err := client.Verify(context.Background(), "ref-1")
	require.NoError(t, err)

	assert.Equal(t, "success", tx.Status)
	assert.Equal(t, "CUS_x", tx.CustomerCode())
}

func TestPaystackRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	client := NewPaystackClient(config.PaystackConfig{SecretKey: "bad", BaseURL: srv.URL})
	_, err := client.Verify(context.Background(), "ref-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGatewayRejected)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestPaystackUnreadableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	client := NewPaystackClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: srv.URL})
	_, err := client.Initialize(context.Background(), InitializeParams{Reference: "r"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGatewayRejected)
}
