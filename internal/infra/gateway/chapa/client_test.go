package chapa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/policies"
	"homestay/internal/domain/shared/money"
)

func newClient(baseURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: time.Second},
		BaseURL:    baseURL,
		SecretKey:  "CHASECK_TEST-secret",
	}
}

func initializeRequest() policies.InitializeRequest {
	return policies.InitializeRequest{
		Amount:      money.Must("300.00", "ETB"),
		Email:       "abel@example.com",
		FirstName:   "Abel",
		LastName:    "Tesfaye",
		Phone:       "+251911000000",
		Reference:   "booking-bkg-1-abc",
		CallbackURL: "https://homestay.example.com/api/v1/payments/webhook",
		ReturnURL:   "https://homestay.example.com/bookings",
		Meta:        map[string]string{"booking_id": "bkg-1"},
	}
}

func TestInitialize(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST-secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data": map[string]any{
				"checkout_url":   "https://checkout.chapa.co/checkout/payment/xyz",
				"transaction_id": "tx-123",
			},
		})
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Initialize(context.Background(), initializeRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.chapa.co/checkout/payment/xyz", res.CheckoutURL)
	assert.Equal(t, "tx-123", res.TransactionID)

	assert.Equal(t, "300.00", captured["amount"])
	assert.Equal(t, "ETB", captured["currency"])
	assert.Equal(t, "booking-bkg-1-abc", captured["tx_ref"])
	assert.Equal(t, "https://homestay.example.com/api/v1/payments/webhook", captured["callback_url"])
}

func TestInitializeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": "Invalid currency",
		})
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Initialize(context.Background(), initializeRequest())
	require.ErrorIs(t, err, policies.ErrGateway)
	assert.Contains(t, err.Error(), "Invalid currency")
}

func TestInitializeHTTPErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream exploded", http.StatusBadGateway)
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"Invalid API Key"}`, http.StatusUnauthorized)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			_, err := newClient(srv.URL).Initialize(context.Background(), initializeRequest())
			assert.ErrorIs(t, err, policies.ErrGateway)
		})
	}
}

func TestInitializeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newClient(srv.URL).Initialize(context.Background(), initializeRequest())
	assert.ErrorIs(t, err, policies.ErrGateway)
}

func TestInitializeWithoutBaseURL(t *testing.T) {
	_, err := newClient("").Initialize(context.Background(), initializeRequest())
	assert.ErrorIs(t, err, policies.ErrGateway)
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/booking-bkg-1-abc", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST-secret", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Payment details",
			"data": map[string]any{
				"status": "SUCCESS",
				"tx_ref": "booking-bkg-1-abc",
				"amount": 300,
			},
		})
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Verify(context.Background(), "booking-bkg-1-abc")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "Payment details", res.Message)
	assert.Equal(t, "booking-bkg-1-abc", res.Raw["tx_ref"])
}

func TestVerifyPendingTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Payment details",
			"data":    map[string]any{"status": "pending", "tx_ref": "booking-bkg-1-abc"},
		})
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Verify(context.Background(), "booking-bkg-1-abc")
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
}

func TestVerifyUnknownReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": "Transaction not found",
		})
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Verify(context.Background(), "booking-none")
	require.ErrorIs(t, err, policies.ErrGateway)
	assert.Contains(t, err.Error(), "Transaction not found")
}

func TestMetricsObserveGatewayCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"checkout_url": "https://checkout.chapa.co/x", "transaction_id": "tx-1"},
		})
	}))
	defer srv.Close()

	recorder := &callRecorder{}
	client := newClient(srv.URL)
	client.Metrics = recorder

	_, err := client.Initialize(context.Background(), initializeRequest())
	require.NoError(t, err)
	require.Len(t, recorder.operations, 1)
	assert.Equal(t, "initialize", recorder.operations[0])
}

type callRecorder struct {
	operations []string
}

func (r *callRecorder) GatewayCall(operation string, duration time.Duration) {
	r.operations = append(r.operations, operation)
}
