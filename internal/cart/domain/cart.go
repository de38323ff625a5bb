package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidCart = errors.New("invalid cart")

type ProductID int64

// Product is the catalog descriptor copied into a line item when it enters
// the cart. Only ID is interpreted by the cart.
type Product struct {
	ID    ProductID `json:"id"`
	Title string    `json:"title"`
	Price float64   `json:"price"`
	Image string    `json:"image"`
}

type LineItem struct {
	Product
	Amount int `json:"amount"`
}

// Cart is ordered by insertion and unique by product ID.
type Cart []LineItem

func (c Cart) IndexOf(id ProductID) int {
	for i, item := range c {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Without returns a copy of c with the item at i removed, keeping order.
func (c Cart) Without(i int) Cart {
	out := make(Cart, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...)
}

func (c Cart) Amounts() map[ProductID]int {
	out := make(map[ProductID]int, len(c))
	for _, item := range c {
		out[item.ID] = item.Amount
	}
	return out
}

// Validate checks that every amount is positive and no product appears twice.
func (c Cart) Validate() error {
	seen := make(map[ProductID]struct{}, len(c))
	for _, item := range c {
		if item.Amount < 1 {
			return fmt.Errorf("%w: product %d has amount %d", ErrInvalidCart, item.ID, item.Amount)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: product %d listed twice", ErrInvalidCart, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// MarshalSnapshot encodes the cart as a JSON array. An empty cart encodes as [].
func MarshalSnapshot(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

func UnmarshalSnapshot(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCart, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
