package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// StripeGateway implements Gateway on top of the Stripe API. Retries are
// done by retry only; the SDK's own network retries are disabled.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	log           *slog.Logger
	retryDelay    time.Duration
}

func NewStripeGateway(secretKey, webhookSecret string, log *slog.Logger) *StripeGateway {
	return newStripeGateway(secretKey, webhookSecret, log, "")
}

// newStripeGateway points the API backend at baseURL when it is set.
func newStripeGateway(secretKey, webhookSecret string, log *slog.Logger, baseURL string) *StripeGateway {
	backend := func(t stripe.SupportedBackend, url string) stripe.Backend {
		cfg := &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     stripeLogger{log: log.With("component", "stripe")},
		}
		if url != "" {
			cfg.URL = stripe.String(url)
		}
		return stripe.GetBackendWithConfig(t, cfg)
	}

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     backend(stripe.APIBackend, baseURL),
		Connect: backend(stripe.ConnectBackend, ""),
		Uploads: backend(stripe.UploadsBackend, ""),
	})
	return &StripeGateway{api: api, webhookSecret: webhookSecret, log: log, retryDelay: retryDelay}
}

func (g *StripeGateway) GetProduct(ctx context.Context, id string) (*Product, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx

	var p *stripe.Product
	err := retry(ctx, g.log, retryAttempts, g.retryDelay, func() error {
		var e error
		p, e = g.api.Products.Get(id, params)
		return e
	})
	if err != nil {
		return nil, translateStripeError(err)
	}
	return toProduct(p), nil
}

func (g *StripeGateway) CreateProduct(ctx context.Context, in Product) (*Product, error) {
	params := &stripe.ProductParams{
		Name:   stripe.String(in.Name),
		Active: stripe.Bool(in.Active),
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	// One key for every attempt so a retried create is not applied twice.
	params.SetIdempotencyKey(stripe.NewIdempotencyKey())

	var p *stripe.Product
	err := retry(ctx, g.log, retryAttempts, g.retryDelay, func() error {
		var e error
		p, e = g.api.Products.New(params)
		return e
	})
	if err != nil {
		return nil, translateStripeError(err)
	}
	return toProduct(p), nil
}

func (g *StripeGateway) UpdateProduct(ctx context.Context, in Product) (*Product, error) {
	params := &stripe.ProductParams{
		Name:   stripe.String(in.Name),
		Active: stripe.Bool(in.Active),
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.SetIdempotencyKey(stripe.NewIdempotencyKey())

	var p *stripe.Product
	err := retry(ctx, g.log, retryAttempts, g.retryDelay, func() error {
		var e error
		p, e = g.api.Products.Update(in.ID, params)
		return e
	})
	if err != nil {
		return nil, translateStripeError(err)
	}
	return toProduct(p), nil
}

func (g *StripeGateway) GetPrice(ctx context.Context, id string) (*Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx

	var p *stripe.Price
	err := retry(ctx, g.log, retryAttempts, g.retryDelay, func() error {
		var e error
		p, e = g.api.Prices.Get(id, params)
		return e
	})
	if err != nil {
		return nil, translateStripeError(err)
	}
	return toPrice(p), nil
}

func (g *StripeGateway) CreatePrice(ctx context.Context, in Price) (*Price, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(in.ProductID),
		UnitAmount: stripe.Int64(in.UnitAmount),
		Currency:   stripe.String(in.Currency),
	}
	if in.Interval != "" && in.Interval != "one_time" {
		params.Recurring = &stripe.PriceRecurringParams{Interval: stripe.String(in.Interval)}
	}
	params.Context = ctx
	params.SetIdempotencyKey(stripe.NewIdempotencyKey())

	var p *stripe.Price
	err := retry(ctx, g.log, retryAttempts, g.retryDelay, func() error {
		var e error
		p, e = g.api.Prices.New(params)
		return e
	})
	if err != nil {
		return nil, translateStripeError(err)
	}
	return toPrice(p), nil
}

func (g *StripeGateway) DeactivatePrice(ctx context.Context, id string) error {
	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx
	params.SetIdempotencyKey(stripe.NewIdempotencyKey())

	err := retry(ctx, g.log, retryAttempts, g.retryDelay, func() error {
		_, e := g.api.Prices.Update(id, params)
		return e
	})
	return translateStripeError(err)
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	mode := stripe.CheckoutSessionModePayment
	if req.Recurring {
		mode = stripe.CheckoutSessionModeSubscription
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ClientReference),
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	// Checkout sessions are created once, without retries.
	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, translateStripeError(err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseCheckoutCompleted(payload []byte, signature string) (*CheckoutCompleted, bool, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Type != "checkout.session.completed" {
		return nil, false, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, false, fmt.Errorf("decode checkout session: %w", err)
	}
	out := &CheckoutCompleted{
		SessionID:       session.ID,
		ClientReference: session.ClientReferenceID,
		Metadata:        session.Metadata,
	}
	if session.Customer != nil {
		out.CustomerID = session.Customer.ID
	}
	return out, true, nil
}

func toProduct(p *stripe.Product) *Product {
	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		Metadata:    p.Metadata,
	}
}

func toPrice(p *stripe.Price) *Price {
	out := &Price{
		ID:         p.ID,
		UnitAmount: p.UnitAmount,
		Currency:   string(p.Currency),
		Interval:   "one_time",
		Active:     p.Active,
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		out.Interval = string(p.Recurring.Interval)
	}
	return out
}

// translateStripeError maps "resource_missing" to ErrNotFound.
func translateStripeError(err error) error {
	if err == nil {
		return nil
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, stripeErr.Msg)
		}
	}
	return err
}

// isTransient reports whether a Stripe call is worth retrying.
func isTransient(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == http.StatusTooManyRequests || stripeErr.HTTPStatusCode >= 500
	}
	// Transport errors carry no status code.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// stripeLogger sends SDK logs to slog. The SDK reports every API error at
// error level, including the ones handled here, so they become warnings.
type stripeLogger struct {
	log *slog.Logger
}

func (l stripeLogger) Debugf(format string, v ...any) { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l stripeLogger) Infof(format string, v ...any)  { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l stripeLogger) Warnf(format string, v ...any)  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l stripeLogger) Errorf(format string, v ...any) { l.log.Warn(fmt.Sprintf(format, v...)) }
