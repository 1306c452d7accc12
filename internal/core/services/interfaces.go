package services

import "context"

// PaymentIntent is the processor's handle for a provisional charge. The
// client secret is handed to the browser; the id is stored only after the
// charge settles.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentProcessor is the contract with the external payment processor. It
// never moves money on our side: creating an intent performs no local write.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error)
}

// Publisher is the real-time channel contract: fire-and-forget delivery to a
// recipient channel. Failures are the caller's problem to log and swallow.
type Publisher interface {
	Publish(channel, event string, payload interface{}) error
}
