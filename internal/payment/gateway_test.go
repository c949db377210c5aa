package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeSuccess(t *testing.T) {
	var received chargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := NewProviderGateway(srv.URL, "test-key", 5*time.Second)

	err := gw.Charge(context.Background(), "pm_abc", 14900)
	require.NoError(t, err)
	assert.Equal(t, "pm_abc", received.PaymentMethodRef)
	assert.Equal(t, int64(14900), received.AmountCents)
}

func TestChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	gw := NewProviderGateway(srv.URL, "", 5*time.Second)

	err := gw.Charge(context.Background(), "pm_abc", 14900)
	assert.ErrorIs(t, err, ErrChargeDeclined)
}

func TestChargeTimeoutIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	gw := NewProviderGateway(srv.URL, "", 50*time.Millisecond)

	err := gw.Charge(context.Background(), "pm_abc", 14900)
	assert.Error(t, err)
}

func TestChargeProviderUnreachable(t *testing.T) {
	gw := NewProviderGateway("http://127.0.0.1:1", "", time.Second)

	err := gw.Charge(context.Background(), "pm_abc", 14900)
	assert.Error(t, err)
}
