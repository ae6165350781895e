package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

// Sync outcomes per pack
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

type PackResult struct {
	Pack      string
	ProductID string
	PriceID   string
	Outcome   string
	Err       error
}

type SyncReport struct {
	Results []PackResult
}

// Count returns how many packs ended with the given outcome.
func (r SyncReport) Count(outcome string) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Observer receives one call per synced pack.
type Observer interface {
	ObservePackSync(outcome string)
}

// Syncer pushes packs to the payment provider as products and prices.
type Syncer struct {
	db       *gorm.DB
	gateway  Gateway
	log      *slog.Logger
	observer Observer
}

func NewSyncer(db *gorm.DB, gateway Gateway, log *slog.Logger, observer Observer) *Syncer {
	return &Syncer{db: db, gateway: gateway, log: log, observer: observer}
}

// Sync upserts every pack. A failing pack is recorded in the report and
// does not stop the others.
func (s *Syncer) Sync(ctx context.Context) (SyncReport, error) {
	var packs []models.Pack
	if err := s.db.WithContext(ctx).Order("position, id").Find(&packs).Error; err != nil {
		return SyncReport{}, fmt.Errorf("load packs: %w", err)
	}

	var report SyncReport
	for i := range packs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := s.syncPack(ctx, &packs[i])
		if res.Err != nil {
			s.log.Error("Pack sync failed", "pack", res.Pack, "error", res.Err)
		} else {
			s.log.Info("Pack synced", "pack", res.Pack, "outcome", res.Outcome, "product", res.ProductID, "price", res.PriceID)
		}
		if s.observer != nil {
			s.observer.ObservePackSync(res.Outcome)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func (s *Syncer) syncPack(ctx context.Context, pack *models.Pack) PackResult {
	res := PackResult{Pack: pack.Name, Outcome: OutcomeUnchanged}
	fail := func(err error) PackResult {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	productID, productOutcome, err := s.syncProduct(ctx, pack)
	if err != nil {
		return fail(fmt.Errorf("product: %w", err))
	}
	res.ProductID = productID

	priceID, priceOutcome := pack.StripePriceID, OutcomeUnchanged
	if !pack.IsFree() {
		priceID, priceOutcome, err = s.syncPrice(ctx, pack, productID)
		if err != nil {
			return fail(fmt.Errorf("price: %w", err))
		}
	}
	res.PriceID = priceID

	if productID != pack.StripeProductID || priceID != pack.StripePriceID {
		err := s.db.WithContext(ctx).Model(pack).Updates(map[string]any{
			"stripe_product_id": productID,
			"stripe_price_id":   priceID,
		}).Error
		if err != nil {
			return fail(fmt.Errorf("save stripe ids: %w", err))
		}
	}

	switch {
	case productOutcome == OutcomeCreated:
		res.Outcome = OutcomeCreated
	case productOutcome == OutcomeUpdated || priceOutcome != OutcomeUnchanged:
		res.Outcome = OutcomeUpdated
	}
	return res
}

func (s *Syncer) syncProduct(ctx context.Context, pack *models.Pack) (string, string, error) {
	want := Product{
		ID:          pack.StripeProductID,
		Name:        pack.Name,
		Description: pack.Description,
		Active:      pack.Active,
		Metadata:    map[string]string{"pack_id": strconv.FormatUint(uint64(pack.ID), 10)},
	}

	if pack.StripeProductID != "" {
		current, err := s.gateway.GetProduct(ctx, pack.StripeProductID)
		switch {
		case err == nil:
			if productMatches(current, want) {
				return current.ID, OutcomeUnchanged, nil
			}
			updated, err := s.gateway.UpdateProduct(ctx, want)
			if err != nil {
				return "", "", err
			}
			return updated.ID, OutcomeUpdated, nil
		case errors.Is(err, ErrNotFound):
			s.log.Warn("Stripe product missing, recreating", "pack", pack.Name, "product", pack.StripeProductID)
		default:
			return "", "", err
		}
	}

	want.ID = ""
	created, err := s.gateway.CreateProduct(ctx, want)
	if err != nil {
		return "", "", err
	}
	return created.ID, OutcomeCreated, nil
}

func productMatches(current *Product, want Product) bool {
	return current.Name == want.Name &&
		current.Description == want.Description &&
		current.Active == want.Active &&
		current.Metadata["pack_id"] == want.Metadata["pack_id"]
}

// syncPrice reuses the current price when it still matches, otherwise it
// creates a new one and retires the old one. Prices cannot be edited.
func (s *Syncer) syncPrice(ctx context.Context, pack *models.Pack, productID string) (string, string, error) {
	interval := pack.Interval
	if interval == "" {
		interval = models.IntervalMonth
	}
	want := Price{
		ProductID:  productID,
		UnitAmount: pack.PriceCents,
		Currency:   strings.ToLower(pack.Currency),
		Interval:   interval,
		Active:     true,
	}

	var stale string
	if pack.StripePriceID != "" {
		current, err := s.gateway.GetPrice(ctx, pack.StripePriceID)
		switch {
		case err == nil:
			if PriceMatches(current, want) {
				return current.ID, OutcomeUnchanged, nil
			}
			if current.Active {
				stale = current.ID
			}
		case errors.Is(err, ErrNotFound):
			s.log.Warn("Stripe price missing, recreating", "pack", pack.Name, "price", pack.StripePriceID)
		default:
			return "", "", err
		}
	}

	created, err := s.gateway.CreatePrice(ctx, want)
	if err != nil {
		return "", "", err
	}
	if stale != "" {
		if err := s.gateway.DeactivatePrice(ctx, stale); err != nil {
			// The new price is already live at this point.
			s.log.Warn("Failed to deactivate old price", "pack", pack.Name, "price", stale, "error", err)
		}
	}
	return created.ID, OutcomeCreated, nil
}

// PriceMatches reports whether an existing price can keep serving the pack.
func PriceMatches(current *Price, want Price) bool {
	return current.Active &&
		current.ProductID == want.ProductID &&
		current.UnitAmount == want.UnitAmount &&
		strings.EqualFold(current.Currency, want.Currency) &&
		current.Interval == want.Interval
}
