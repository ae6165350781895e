// Package pricing keeps packs in sync with Stripe products and prices and
// runs the checkout flow.
package pricing

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a Gateway when the remote object does not exist.
	ErrNotFound = errors.New("pricing: object not found")
	// ErrInvalidSignature is returned for webhook payloads that fail verification.
	ErrInvalidSignature = errors.New("pricing: invalid webhook signature")
)

type Product struct {
	ID          string
	Name        string
	Description string
	Active      bool
	Metadata    map[string]string
}

type Price struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
	// Interval is "month", "year" or "one_time" for non recurring prices.
	Interval string
	Active   bool
}

type CheckoutRequest struct {
	PriceID       string
	Recurring     bool
	CustomerID    string
	CustomerEmail string
	// ClientReference carries our user id through the checkout.
	ClientReference string
	Metadata        map[string]string
	SuccessURL      string
	CancelURL       string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutCompleted is the part of a checkout.session.completed event we act on.
type CheckoutCompleted struct {
	SessionID       string
	ClientReference string
	CustomerID      string
	Metadata        map[string]string
}

// Gateway is the subset of the payment provider used by the sync and
// checkout flows.
type Gateway interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, p Product) (*Product, error)
	UpdateProduct(ctx context.Context, p Product) (*Product, error)
	GetPrice(ctx context.Context, id string) (*Price, error)
	CreatePrice(ctx context.Context, p Price) (*Price, error)
	DeactivatePrice(ctx context.Context, id string) error
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseCheckoutCompleted verifies a webhook payload. ok is false for
	// valid events of any other type.
	ParseCheckoutCompleted(payload []byte, signature string) (event *CheckoutCompleted, ok bool, err error)
}
