package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pbgym/internal/metrics"
)

// ErrChargeDeclined is returned when the provider answers but refuses the
// charge. Transport errors and timeouts are wrapped separately; the caller
// treats every non-nil error as a failed charge either way.
var ErrChargeDeclined = errors.New("charge declined")

// Gateway executes charges against saved payment methods. The provider is
// opaque: how a charge is executed is its business, only the outcome is ours.
type Gateway interface {
	Charge(ctx context.Context, paymentMethodRef string, amountCents int64) error
}

type chargeRequest struct {
	PaymentMethodRef string `json:"payment_method_ref"`
	AmountCents      int64  `json:"amount_cents"`
	Currency         string `json:"currency"`
}

// ProviderGateway charges through an external HTTP payment provider.
type ProviderGateway struct {
	url    string
	apiKey string
	client *http.Client
}

func NewProviderGateway(url, apiKey string, timeout time.Duration) *ProviderGateway {
	return &ProviderGateway{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *ProviderGateway) Charge(ctx context.Context, paymentMethodRef string, amountCents int64) error {
	body, err := json.Marshal(chargeRequest{
		PaymentMethodRef: paymentMethodRef,
		AmountCents:      amountCents,
		Currency:         "PLN",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.RecordCharge("failure")
		return fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordCharge("failure")
		return fmt.Errorf("%w: provider returned %d", ErrChargeDeclined, resp.StatusCode)
	}

	metrics.RecordCharge("success")
	return nil
}
