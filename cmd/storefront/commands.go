package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/app"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
)

const usage = `commands:
  products                 list the storefront with the amount already in the cart
  add <id>                 add one unit of a product
  update <id> <amount>     set the amount of a product in the cart
  remove <id>              drop a product from the cart
  list                     show the cart and its total
  stock                    report cart lines that exceed current stock
  clear                    empty the cart
  help                     show this help
  quit                     leave
`

type productLister interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// shell runs one command per input line against a cart Store. Rejected cart
// operations surface through the Store's notifier, not through exec.
type shell struct {
	store    *app.Store
	products productLister
	out      io.Writer
}

func (sh *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "products":
		return false, sh.listProducts(ctx)
	case "add":
		n, err := parseArgs(args, "add <id>")
		if err != nil {
			return false, err
		}
		sh.store.AddProduct(ctx, domain.ProductID(n[0]))
	case "update":
		n, err := parseArgs(args, "update <id> <amount>", "amount")
		if err != nil {
			return false, err
		}
		sh.store.UpdateProductAmount(ctx, domain.ProductID(n[0]), int(n[1]))
	case "remove", "rm":
		n, err := parseArgs(args, "remove <id>")
		if err != nil {
			return false, err
		}
		sh.store.RemoveProduct(ctx, domain.ProductID(n[0]))
	case "list", "ls", "cart":
		sh.listCart()
	case "stock":
		return false, sh.stockReport(ctx)
	case "clear":
		return false, sh.store.Clear(ctx)
	case "help", "?":
		fmt.Fprint(sh.out, usage)
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

// parseArgs expects one integer per name after the product id.
func parseArgs(args []string, synopsis string, names ...string) ([]int64, error) {
	if len(args) != 1+len(names) {
		return nil, fmt.Errorf("usage: %s", synopsis)
	}
	out := make([]int64, len(args))
	for i, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("usage: %s: %q is not a number", synopsis, a)
		}
		out[i] = n
	}
	return out, nil
}

func (sh *shell) listProducts(ctx context.Context) error {
	products, err := sh.products.Products(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	amounts := sh.store.AmountsByProduct()

	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tIN CART")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Title, formatPrice(p.Price), amounts[p.ID])
	}
	return tw.Flush()
}

func (sh *shell) listCart() {
	items := sh.store.Items()
	if len(items) == 0 {
		fmt.Fprintln(sh.out, "cart is empty")
		return
	}

	var total float64
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tAMOUNT\tSUBTOTAL")
	for _, it := range items {
		subtotal := it.Price * float64(it.Amount)
		total += subtotal
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", it.ID, it.Title, formatPrice(it.Price), it.Amount, formatPrice(subtotal))
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", formatPrice(total))
	_ = tw.Flush()
}

func (sh *shell) stockReport(ctx context.Context) error {
	shortfalls, err := sh.store.StockReport(ctx)
	if err != nil {
		return fmt.Errorf("stock report: %w", err)
	}
	if len(shortfalls) == 0 {
		fmt.Fprintln(sh.out, "all cart items are in stock")
		return nil
	}
	for _, s := range shortfalls {
		fmt.Fprintf(sh.out, "%d %s: %d in cart, %d available\n", s.Item.ID, s.Item.Title, s.Item.Amount, s.Available)
	}
	return nil
}

// formatPrice renders a BRL amount the way the storefront shows it, e.g.
// 1234.5 -> "R$ 1.234,50".
func formatPrice(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, cents := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + cents
}
