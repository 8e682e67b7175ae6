package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketplace/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Dispatch after Close has been called.
var ErrClosed = errors.New("notification dispatcher closed")

// DispatcherConfig bounds a notification run.
type DispatcherConfig struct {
	MaxConcurrent int
	Timeout       time.Duration
}

// Dispatcher fans out order notifications in the background. Delivery
// failures are logged and never reach the caller.
type Dispatcher struct {
	mailer Mailer
	pusher Pusher
	shops  ShopDirectory
	cfg    DispatcherConfig
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. pusher may be nil to disable push.
func NewDispatcher(mailer Mailer, pusher Pusher, shops ShopDirectory, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Dispatcher{
		mailer: mailer,
		pusher: pusher,
		shops:  shops,
		cfg:    cfg,
		logger: logger.With().Str("component", "notification-dispatcher").Logger(),
	}
}

// OrderPlaced schedules the customer and vendor notifications for a committed
// checkout and returns immediately.
func (d *Dispatcher) OrderPlaced(ev OrderPlaced) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
		defer cancel()

		d.deliver(ctx, ev)
	}()
	return nil
}

// Close stops accepting work and waits for in-flight deliveries, or until ctx
// is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev OrderPlaced) {
	logger := d.logger.With().Str("parent_order_id", ev.Parent.ID.String()).Logger()

	shopIDs := make([]string, 0, len(ev.SubOrders))
	for _, sub := range ev.SubOrders {
		if sub.ShopID != nil {
			shopIDs = append(shopIDs, *sub.ShopID)
		}
	}

	shops := make(map[string]model.Shop, len(shopIDs))
	if len(shopIDs) > 0 {
		found, err := d.shops.GetByIDs(ctx, shopIDs)
		if err != nil {
			logger.Error().Err(err).Msg("failed to look up shops, vendor emails skipped")
		}
		for _, s := range found {
			shops[s.ID] = s
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.MaxConcurrent)

	// Each task reports its own failure so one bad recipient does not cancel
	// the others.
	g.Go(func() error {
		d.sendCustomer(gctx, logger, ev)
		return nil
	})

	for _, sub := range ev.SubOrders {
		sub := sub
		if sub.ShopID == nil {
			continue
		}
		shopID := *sub.ShopID

		if shop, ok := shops[shopID]; ok && shop.Email != "" {
			g.Go(func() error {
				d.sendShop(gctx, logger, shop, ev.Parent, sub)
				return nil
			})
		} else {
			logger.Warn().Str("shop_id", shopID).Msg("no email on file for shop")
		}

		if d.pusher != nil {
			g.Go(func() error {
				d.pushShop(gctx, logger, shopID, ev.Parent, sub)
				return nil
			})
		}
	}

	_ = g.Wait()
	logger.Debug().Int("sub_orders", len(ev.SubOrders)).Msg("order notifications processed")
}

func (d *Dispatcher) sendCustomer(ctx context.Context, logger zerolog.Logger, ev OrderPlaced) {
	if ev.Parent.Contact.Email == "" {
		logger.Warn().Msg("order has no customer email")
		return
	}

	msg, err := RenderCustomerEmail(ev)
	if err != nil {
		logger.Error().Err(err).Msg("failed to render customer email")
		return
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("failed to send customer email")
		return
	}
	logger.Info().Msg("customer confirmation sent")
}

func (d *Dispatcher) sendShop(ctx context.Context, logger zerolog.Logger, shop model.Shop, parent model.Order, sub model.SubOrderDetail) {
	msg, err := RenderShopEmail(shop, parent, sub)
	if err != nil {
		logger.Error().Err(err).Str("shop_id", shop.ID).Msg("failed to render shop email")
		return
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		logger.Error().Err(err).Str("shop_id", shop.ID).Msg("failed to send shop email")
		return
	}
	logger.Info().Str("shop_id", shop.ID).Msg("shop notification email sent")
}

func (d *Dispatcher) pushShop(ctx context.Context, logger zerolog.Logger, shopID string, parent model.Order, sub model.SubOrderDetail) {
	tokens, err := d.shops.DeviceTokens(ctx, shopID)
	if err != nil {
		logger.Error().Err(err).Str("shop_id", shopID).Msg("failed to load device tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	err = d.pusher.Push(ctx, PushMessage{
		Tokens: tokens,
		Title:  "New order received",
		Body:   "Order " + parent.ID.String() + " total " + money(sub.FinalAmount),
		Data: map[string]string{
			"parentOrderId": parent.ID.String(),
			"subOrderId":    sub.ID.String(),
			"shopId":        shopID,
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("shop_id", shopID).Msg("failed to send push notification")
		return
	}
	logger.Info().Str("shop_id", shopID).Int("devices", len(tokens)).Msg("push notification sent")
}
