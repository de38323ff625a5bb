// Package notify provides Notification sinks for the cart store.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/app"
)

// Logger writes each notification as a WARN record.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

func (l *Logger) Notify(ctx context.Context, n app.Notification) {
	l.log.WarnContext(ctx, n.Message,
		slog.String("kind", n.Kind.String()),
		slog.Int64("product_id", int64(n.ProductID)),
	)
}

// Writer prints one line per notification, the way a toast would show it.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Notify(_ context.Context, n app.Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintf(w.w, "! %s\n", n.Message)
}

// Multi fans a notification out to every sink in order.
type Multi []app.Notifier

func (m Multi) Notify(ctx context.Context, n app.Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}
