package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	opAddProduct     = "AddProduct"
	opRemoveProduct  = "RemoveProduct"
	opUpdateQuantity = "UpdateProductAmount"

	defaultStockReportConcurrency = 10
)

// Store owns the shopper's cart. It is the only mutator of cart state and
// mirrors every successful change to its SnapshotStore before committing it
// in memory. Mutations are serialized per Store; reads never wait on an
// in-flight mutation.
type Store struct {
	catalog   Catalog
	stock     StockOracle
	snapshots SnapshotStore
	notifier  Notifier

	log           *slog.Logger
	tracer        trace.Tracer
	maxConcurrent int

	opMu sync.Mutex
	mu   sync.RWMutex
	cart domain.Cart
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithStockReportConcurrency bounds the parallel stock lookups of StockReport.
func WithStockReportConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// NewStore seeds the cart from the last persisted snapshot, or starts empty
// when none exists.
func NewStore(ctx context.Context, catalog Catalog, stock StockOracle, snapshots SnapshotStore, notifier Notifier, opts ...Option) (*Store, error) {
	if catalog == nil || stock == nil || snapshots == nil {
		return nil, errors.New("cart store: catalog, stock oracle and snapshot store are required")
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}

	s := &Store{
		catalog:       catalog,
		stock:         stock,
		snapshots:     snapshots,
		notifier:      notifier,
		log:           slog.Default(),
		tracer:        otel.Tracer("github.com/dwikikusuma/rocketshoes-cart/internal/cart/app"),
		maxConcurrent: defaultStockReportConcurrency,
		cart:          domain.Cart{},
	}
	for _, opt := range opts {
		opt(s)
	}

	data, found, err := snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	if found {
		cart, err := domain.UnmarshalSnapshot(data)
		if err != nil {
			return nil, fmt.Errorf("load cart snapshot: %w", err)
		}
		s.cart = cart
	}

	s.log.Info("cart loaded", slog.Int("items", len(s.cart)), slog.Bool("from_snapshot", found))
	return s, nil
}

// Items returns a copy of the cart in insertion order.
func (s *Store) Items() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cart)
}

// AmountsByProduct maps each product in the cart to its selected amount.
func (s *Store) AmountsByProduct() map[domain.ProductID]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Amounts()
}

// AddProduct appends the product with amount 1, or increments its amount by
// one when it is already in the cart and stock allows.
func (s *Store) AddProduct(ctx context.Context, id domain.ProductID) {
	s.apply(ctx, opAddProduct, id, MsgAddFailed, func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
		if i := cart.IndexOf(id); i >= 0 {
			available, err := s.stock.AvailableQuantity(ctx, id)
			if err != nil {
				return nil, collaboratorFailure(opAddProduct, id, err)
			}
			if cart[i].Amount >= available {
				return nil, stockInsufficient(opAddProduct, id, cart[i].Amount+1, available)
			}
			cart[i].Amount++
			return cart, nil
		}

		product, err := s.catalog.Product(ctx, id)
		if err != nil {
			return nil, collaboratorFailure(opAddProduct, id, err)
		}
		product.ID = id
		return append(cart, domain.LineItem{Product: product, Amount: 1}), nil
	}, attribute.Int64("app.product_id", int64(id)))
}

// RemoveProduct drops the whole line item regardless of its amount.
func (s *Store) RemoveProduct(ctx context.Context, id domain.ProductID) {
	s.apply(ctx, opRemoveProduct, id, MsgRemoveFailed, func(_ context.Context, cart domain.Cart) (domain.Cart, error) {
		i := cart.IndexOf(id)
		if i < 0 {
			return nil, notFound(opRemoveProduct, id)
		}
		return cart.Without(i), nil
	}, attribute.Int64("app.product_id", int64(id)))
}

// UpdateProductAmount sets the absolute amount of a product already in the
// cart. Amounts below 1 are ignored without notification.
func (s *Store) UpdateProductAmount(ctx context.Context, id domain.ProductID, amount int) {
	s.apply(ctx, opUpdateQuantity, id, MsgUpdateFailed, func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
		if amount <= 0 {
			return nil, errNoOp
		}
		i := cart.IndexOf(id)
		if i < 0 {
			return nil, notFound(opUpdateQuantity, id)
		}
		available, err := s.stock.AvailableQuantity(ctx, id)
		if err != nil {
			return nil, collaboratorFailure(opUpdateQuantity, id, err)
		}
		if amount > available {
			return nil, stockInsufficient(opUpdateQuantity, id, amount, available)
		}
		cart[i].Amount = amount
		return cart, nil
	}, attribute.Int64("app.product_id", int64(id)), attribute.Int("app.amount", amount))
}

// Clear empties the cart, e.g. once checkout completes. Unlike the shopper
// operations it reports failure to the caller.
func (s *Store) Clear(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "cart.Clear")
	defer span.End()

	if err := s.commit(ctx, domain.Cart{}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear failed")
		return err
	}
	s.log.Info("cart cleared")
	return nil
}

type Shortfall struct {
	Item      domain.LineItem
	Available int
}

// StockReport re-reads stock for every line and returns those whose amount
// now exceeds what is available. The cart is never adjusted.
func (s *Store) StockReport(ctx context.Context) ([]Shortfall, error) {
	ctx, span := s.tracer.Start(ctx, "cart.StockReport")
	defer span.End()

	items := s.Items()
	available := make([]int, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i := range items {
		g.Go(func() error {
			n, err := s.stock.AvailableQuantity(gctx, items[i].ID)
			if err != nil {
				return fmt.Errorf("stock for product %d: %w", items[i].ID, err)
			}
			available[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock report failed")
		return nil, err
	}

	var out []Shortfall
	for i, item := range items {
		if item.Amount > available[i] {
			out = append(out, Shortfall{Item: item, Available: available[i]})
		}
	}
	span.SetAttributes(attribute.Int("app.shortfalls", len(out)))
	return out, nil
}

type mutation func(ctx context.Context, cart domain.Cart) (domain.Cart, error)

func (s *Store) apply(ctx context.Context, op string, id domain.ProductID, failMsg string, next mutation, attrs ...attribute.KeyValue) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "cart."+op)
	defer span.End()
	span.SetAttributes(attrs...)

	log := s.log.With(
		slog.String("op", op),
		slog.String("op_id", uuid.NewString()),
		slog.Int64("product_id", int64(id)),
	)

	updated, err := next(ctx, s.Items())
	if errors.Is(err, errNoOp) {
		log.Debug("cart operation ignored")
		return
	}
	if err == nil {
		if cerr := s.commit(ctx, updated); cerr != nil {
			err = collaboratorFailure(op, id, cerr)
		}
	}
	if err != nil {
		s.reject(ctx, span, log, id, failMsg, err)
		return
	}

	log.Info("cart updated", slog.Int("items", len(updated)))
}

// commit persists next and only then makes it the current cart.
func (s *Store) commit(ctx context.Context, next domain.Cart) error {
	data, err := domain.MarshalSnapshot(next)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, data); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *Store) reject(ctx context.Context, span trace.Span, log *slog.Logger, id domain.ProductID, failMsg string, err error) {
	kind := KindOf(err)
	msg := failMsg
	if kind == KindStockInsufficient {
		msg = MsgOutOfStock
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, kind.String())
	log.Warn("cart operation rejected", slog.String("kind", kind.String()), slog.Any("err", err))

	s.notifier.Notify(ctx, Notification{Kind: kind, ProductID: id, Message: msg})
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}
