package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	stripeAPIBase = "https://api.stripe.com"

	// webhookTolerance bounds how stale a signed webhook timestamp may be.
	// Redeliveries inside the window are fine; replay outside it is rejected.
	webhookTolerance = 5 * time.Minute
)

var (
	ErrWebhookSignature = errors.New("webhook signature verification failed")
)

// StripeService talks to the Stripe payment-intents API. It implements
// PaymentProcessor; nothing here touches the local store.
type StripeService struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

// NewStripeService creates a new Stripe client
func NewStripeService(secretKey, webhookSecret string) *StripeService {
	return &StripeService{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       stripeAPIBase,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// stripeIntentResponse is the subset of the payment-intent object we read
type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreateIntent requests a charge intent for the amount. Stripe wants integer
// cents and form-encoded bodies; metadata rides along for reconciliation. An
// idempotency key guards against duplicate charges on retried requests.
func (s *StripeService) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	data := url.Values{}
	data.Set("amount", strconv.FormatInt(int64(math.Round(amount*100)), 10))
	data.Set("currency", currency)
	data.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		data.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/payment_intents", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, string(body))
	}

	var intent stripeIntentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// WebhookEvent is a verified event delivered by the processor
type WebhookEvent struct {
	Type   string
	Intent struct {
		ID             string            `json:"id"`
		AmountReceived int64             `json:"amount_received"`
		Metadata       map[string]string `json:"metadata"`
	}
}

// ParseWebhook verifies the Stripe-Signature header against the raw payload
// and decodes the event. Payloads must never be trusted before this check:
// webhooks are redelivered and can be forged.
func (s *StripeService) ParseWebhook(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if err := s.verifySignature(payload, sigHeader, time.Now()); err != nil {
		return nil, err
	}

	var raw struct {
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	event := &WebhookEvent{Type: raw.Type}
	if len(raw.Data.Object) > 0 {
		if err := json.Unmarshal(raw.Data.Object, &event.Intent); err != nil {
			return nil, fmt.Errorf("decode webhook object: %w", err)
		}
	}
	return event, nil
}

// verifySignature checks the v1 HMAC-SHA256 signature over "<t>.<payload>"
func (s *StripeService) verifySignature(payload []byte, sigHeader string, now time.Time) error {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrWebhookSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrWebhookSignature
	}
	if now.Sub(time.Unix(timestamp, 0)) > webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrWebhookSignature)
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrWebhookSignature
}
