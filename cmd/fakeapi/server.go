package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/infra/storefrontapi"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// fixture is the on-disk shape of the storefront's data, one products list
// and one stock list, as a json-server db file.
type fixture struct {
	Products []domain.Product      `json:"products"`
	Stock    []storefrontapi.Stock `json:"stock"`
}

func loadFixture(path string) (fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	var fx fixture
	if err := json.NewDecoder(f).Decode(&fx); err != nil {
		return fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	for _, s := range fx.Stock {
		if s.Amount < 0 {
			return fixture{}, fmt.Errorf("fixture %s: stock %d has negative amount", path, s.ID)
		}
	}
	return fx, nil
}

type server struct {
	log      *slog.Logger
	products []domain.Product
	byID     map[domain.ProductID]domain.Product
	stock    map[domain.ProductID]storefrontapi.Stock
}

func newServer(fx fixture, log *slog.Logger) *server {
	s := &server{
		log:      log,
		products: fx.Products,
		byID:     make(map[domain.ProductID]domain.Product, len(fx.Products)),
		stock:    make(map[domain.ProductID]storefrontapi.Stock, len(fx.Stock)),
	}
	if s.products == nil {
		s.products = []domain.Product{}
	}
	for _, p := range fx.Products {
		s.byID[p.ID] = p
	}
	for _, st := range fx.Stock {
		s.stock[st.ID] = st
	}
	return s
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fakeapi"))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id}", s.getStock).Methods(http.MethodGet)
	return r
}

func (s *server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.products)
}

func (s *server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, struct{}{})
		return
	}
	p, ok := s.byID[id]
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, struct{}{})
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

func (s *server) getStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, struct{}{})
		return
	}
	st, ok := s.stock[id]
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, struct{}{})
		return
	}
	s.writeJSON(w, r, http.StatusOK, st)
}

func productID(r *http.Request) (domain.ProductID, bool) {
	n, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return domain.ProductID(n), true
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "write response", slog.String("path", r.URL.Path), slog.Any("err", err))
	}
}
