package app

import (
	"context"
	"testing"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
	"golang.org/x/sync/errgroup"
)

func TestStore_ConcurrentAddProductIsSerialized(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.Cart{item(1, 1)}, map[domain.ProductID]int{1: 1000})

	const N = 100
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			h.store.AddProduct(ctx, 1)
			return nil
		})
	}
	_ = g.Wait()

	h.assertCart(t, domain.Cart{item(1, N+1)})
	h.assertPersisted(t)
}

func TestStore_ConcurrentAddProductRespectsStock(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, map[domain.ProductID]int{2: 10})

	const N = 50
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			h.store.AddProduct(ctx, 2)
			return nil
		})
	}
	_ = g.Wait()

	h.assertCart(t, domain.Cart{item(2, 10)})
	rejected := h.notifier.all()
	if len(rejected) != N-10 {
		t.Fatalf("expected %d out-of-stock notifications, got %d", N-10, len(rejected))
	}
	for _, n := range rejected {
		if n.Kind != KindStockInsufficient {
			t.Fatalf("unexpected notification %+v", n)
		}
	}
}

func TestStore_ReadsDoNotWaitOnStockLookup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.Cart{item(1, 1)}, nil)
	slow := &blockingStock{release: make(chan struct{}), entered: make(chan struct{})}
	h.store.stock = slow

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.store.AddProduct(ctx, 1)
	}()

	<-slow.entered
	if got := h.store.Len(); got != 1 {
		t.Fatalf("Len during in-flight add = %d, want 1", got)
	}
	close(slow.release)
	<-done

	h.assertCart(t, domain.Cart{item(1, 2)})
}

type blockingStock struct {
	release chan struct{}
	entered chan struct{}
}

func (b *blockingStock) AvailableQuantity(ctx context.Context, id domain.ProductID) (int, error) {
	close(b.entered)
	<-b.release
	return 5, nil
}
