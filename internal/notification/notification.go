// Package notification delivers order confirmations to customers and vendors
// after a checkout has been committed.
package notification

import (
	"context"

	"marketplace/internal/model"
)

// Message is a rendered email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// PushMessage is a notification addressed to a set of device tokens.
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Pusher delivers push notifications to devices.
type Pusher interface {
	Push(ctx context.Context, msg PushMessage) error
}

// ShopDirectory resolves vendor contact data.
type ShopDirectory interface {
	GetByIDs(ctx context.Context, ids []string) ([]model.Shop, error)
	DeviceTokens(ctx context.Context, shopID string) ([]string, error)
}

// OrderPlaced describes a committed checkout.
type OrderPlaced struct {
	Parent    model.Order
	SubOrders []model.SubOrderDetail
}
