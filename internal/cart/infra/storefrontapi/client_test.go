package storefrontapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var catalog = []domain.Product{
	{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "https://rocketshoes.test/1.jpg"},
	{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketshoes.test/2.jpg"},
}

var stock = map[domain.ProductID]int{1: 3, 2: 5}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc("/products", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, catalog)
	}).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
		for _, p := range catalog {
			if p.ID == domain.ProductID(id) {
				writeJSON(w, p)
				return
			}
		}
		http.NotFound(w, req)
	}).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
		n, ok := stock[domain.ProductID(id)]
		if !ok {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, Stock{ID: domain.ProductID(id), Amount: n})
	}).Methods(http.MethodGet)
	r.HandleFunc("/broken/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})
	r.HandleFunc("/down/stock/{id}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	r.HandleFunc("/negative/stock/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, Stock{ID: 1, Amount: -1})
	})
	r.HandleFunc("/empty/stock/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	r.HandleFunc("/null/stock/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	t.Run("relative url -> error", func(t *testing.T) {
		if _, err := New("localhost"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("trailing slash is trimmed", func(t *testing.T) {
		c, err := New("http://localhost:3333/")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if c.baseURL != "http://localhost:3333" {
			t.Fatalf("baseURL = %q", c.baseURL)
		}
	})

	t.Run("timeout option", func(t *testing.T) {
		c, err := New("http://localhost:3333", WithTimeout(2*time.Second))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if c.http.Timeout != 2*time.Second {
			t.Fatalf("timeout = %v", c.http.Timeout)
		}
	})

	t.Run("timeout does not touch a caller's client", func(t *testing.T) {
		shared := &http.Client{}
		c, err := New("http://localhost:3333", WithHTTPClient(shared), WithTimeout(2*time.Second))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if shared.Timeout != 0 {
			t.Fatalf("shared client timeout changed to %v", shared.Timeout)
		}
		if c.http == shared || c.http.Timeout != 2*time.Second {
			t.Fatalf("client timeout = %v, shared = %v", c.http.Timeout, c.http == shared)
		}
	})
}

func TestProduct(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Run("found", func(t *testing.T) {
		got, err := c.Product(context.Background(), 2)
		if err != nil {
			t.Fatalf("Product: %v", err)
		}
		if diff := cmp.Diff(catalog[1], got); diff != "" {
			t.Fatalf("product mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing -> ErrNotFound", func(t *testing.T) {
		_, err := c.Product(context.Background(), 99)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("malformed body -> error", func(t *testing.T) {
		broken, _ := New(srv.URL + "/broken")
		if _, err := broken.Product(context.Background(), 1); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestProducts(t *testing.T) {
	srv := newTestServer(t)
	c, _ := New(srv.URL)

	got, err := c.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if diff := cmp.Diff(catalog, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableQuantity(t *testing.T) {
	srv := newTestServer(t)
	c, _ := New(srv.URL)

	t.Run("ok", func(t *testing.T) {
		n, err := c.AvailableQuantity(context.Background(), 1)
		if err != nil {
			t.Fatalf("AvailableQuantity: %v", err)
		}
		if n != 3 {
			t.Fatalf("amount = %d, want 3", n)
		}
	})

	t.Run("server error -> error", func(t *testing.T) {
		down, _ := New(srv.URL + "/down")
		if _, err := down.AvailableQuantity(context.Background(), 1); err == nil {
			t.Fatal("expected error for 503")
		}
	})

	t.Run("negative amount -> error", func(t *testing.T) {
		neg, _ := New(srv.URL + "/negative")
		if _, err := neg.AvailableQuantity(context.Background(), 1); err == nil {
			t.Fatal("expected error for negative stock")
		}
	})

	t.Run("missing amount -> error", func(t *testing.T) {
		for _, prefix := range []string{"/empty", "/null"} {
			bad, _ := New(srv.URL + prefix)
			if n, err := bad.AvailableQuantity(context.Background(), 1); err == nil {
				t.Fatalf("%s: expected error, got amount %d", prefix, n)
			}
		}
	})

	t.Run("zero amount is valid", func(t *testing.T) {
		stock[7] = 0
		t.Cleanup(func() { delete(stock, 7) })
		n, err := c.AvailableQuantity(context.Background(), 7)
		if err != nil || n != 0 {
			t.Fatalf("got (%d, %v), want (0, nil)", n, err)
		}
	})

	t.Run("unreachable -> error", func(t *testing.T) {
		dead, _ := New("http://127.0.0.1:1")
		if _, err := dead.AvailableQuantity(context.Background(), 1); err == nil {
			t.Fatal("expected transport error")
		}
	})
}
