package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPackUnavailable = errors.New("pack is not available")
	ErrPackNotSynced   = errors.New("pack has no payment price yet")
)

// Billing starts checkouts and applies their results to users.
type Billing struct {
	db         *gorm.DB
	gateway    Gateway
	log        *slog.Logger
	successURL string
	cancelURL  string
}

func NewBilling(db *gorm.DB, gateway Gateway, log *slog.Logger, successURL, cancelURL string) *Billing {
	return &Billing{db: db, gateway: gateway, log: log, successURL: successURL, cancelURL: cancelURL}
}

// Checkout returns the URL the user must visit to buy a pack. Free packs
// are granted immediately and the success URL is returned.
func (b *Billing) Checkout(ctx context.Context, userID, packID uint) (*CheckoutSession, error) {
	db := b.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	var pack models.Pack
	if err := db.First(&pack, packID).Error; err != nil {
		return nil, fmt.Errorf("load pack: %w", err)
	}
	if !pack.Active {
		return nil, ErrPackUnavailable
	}

	if pack.IsFree() {
		if err := b.assignPack(ctx, user.ID, pack.ID, ""); err != nil {
			return nil, err
		}
		return &CheckoutSession{URL: b.successURL}, nil
	}
	if pack.StripePriceID == "" {
		return nil, ErrPackNotSynced
	}

	session, err := b.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:         pack.StripePriceID,
		Recurring:       pack.Interval != models.IntervalOneTime,
		CustomerID:      user.StripeCustomerID,
		CustomerEmail:   user.Email,
		ClientReference: strconv.FormatUint(uint64(user.ID), 10),
		Metadata:        map[string]string{"pack_id": strconv.FormatUint(uint64(pack.ID), 10)},
		SuccessURL:      b.successURL,
		CancelURL:       b.cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	b.log.Info("Checkout session created", "user_id", user.ID, "pack", pack.Name, "session", session.ID)
	return session, nil
}

// HandleWebhook verifies a provider event and grants the purchased pack.
// Replayed events leave the user unchanged.
func (b *Billing) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, ok, err := b.gateway.ParseCheckoutCompleted(payload, signature)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	userID, err := strconv.ParseUint(event.ClientReference, 10, 64)
	if err != nil {
		return fmt.Errorf("checkout %s: bad client reference %q", event.SessionID, event.ClientReference)
	}
	packID, err := strconv.ParseUint(event.Metadata["pack_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("checkout %s: bad pack_id %q", event.SessionID, event.Metadata["pack_id"])
	}

	if err := b.assignPack(ctx, uint(userID), uint(packID), event.CustomerID); err != nil {
		return err
	}
	b.log.Info("Checkout completed", "user_id", userID, "pack_id", packID, "session", event.SessionID)
	return nil
}

func (b *Billing) assignPack(ctx context.Context, userID, packID uint, customerID string) error {
	updates := map[string]any{"pack_id": packID}
	if customerID != "" {
		updates["stripe_customer_id"] = customerID
	}
	res := b.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("assign pack: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("assign pack to user %d: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}
