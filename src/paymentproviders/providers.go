package paymentproviders

import (
	"errors"
	"log"

	"tix/src/lib"
)

var ErrUnknownProvider = errors.New("unknown payment provider")

// Provider opens a payment session for an order. The payment key identifies
// the order on the confirmation path without exposing its public key.
type Provider interface {
	Name() string
	CreateCheckout(paymentKey string, description string, currency string, total int64) (string, error)
}

var registry = map[string]Provider{
	"stripe": stripeProvider{},
	"manual": manualProvider{},
}

// Get resolves a provider by name.
func Get(name string) (Provider, error) {
	p, ok := registry[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// Register adds a provider to the registry, replacing any with the same
// name. Used by tests to stub out Stripe.
func Register(p Provider) {
	registry[p.Name()] = p
}

type stripeProvider struct{}

func (stripeProvider) Name() string { return "stripe" }

func (stripeProvider) CreateCheckout(paymentKey string, description string, currency string, total int64) (string, error) {
	return lib.CreateOrderCheckout(paymentKey, description, currency, total)
}

// manualProvider covers box office sales settled outside the system. There
// is no payment session; the organizer confirms payment by hand.
type manualProvider struct{}

func (manualProvider) Name() string { return "manual" }

func (manualProvider) CreateCheckout(paymentKey string, description string, currency string, total int64) (string, error) {
	log.Printf("manual payment expected for key %s: %d %s\n", paymentKey, total, currency)
	return "", nil
}
