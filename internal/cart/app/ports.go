package app

import (
	"context"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
)

type Catalog interface {
	Product(ctx context.Context, id domain.ProductID) (domain.Product, error)
}

type StockOracle interface {
	AvailableQuantity(ctx context.Context, id domain.ProductID) (int, error)
}

// SnapshotStore holds the serialized cart under a single key. Save replaces
// the whole snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) (snapshot []byte, found bool, err error)
	Save(ctx context.Context, snapshot []byte) error
}

type Notification struct {
	Kind      Kind
	ProductID domain.ProductID
	Message   string
}

// Notifier receives user-facing failure messages. Implementations must not
// block the caller for long; the result is never inspected.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
