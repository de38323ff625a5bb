package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
)

var errBoom = errors.New("boom")

type fakeCatalog struct {
	mu       sync.Mutex
	products map[domain.ProductID]domain.Product
	err      error
	calls    int
}

func (f *fakeCatalog) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, errors.New("product not found")
	}
	return p, nil
}

type fakeStock struct {
	mu     sync.Mutex
	amount map[domain.ProductID]int
	err    error
	calls  int
}

func (f *fakeStock) AvailableQuantity(ctx context.Context, id domain.ProductID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.amount[id], nil
}

func (f *fakeStock) set(id domain.ProductID, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amount[id] = n
}

type fakeSnapshots struct {
	mu      sync.Mutex
	data    []byte
	found   bool
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeSnapshots) Load(ctx context.Context) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	return f.data, f.found, nil
}

func (f *fakeSnapshots) Save(ctx context.Context, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.data = append([]byte(nil), snapshot...)
	f.found = true
	return nil
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.got...)
}
