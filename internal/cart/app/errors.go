package app

import (
	"errors"
	"fmt"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
)

type Kind int

const (
	KindStockInsufficient Kind = iota + 1
	KindNotFound
	KindCollaboratorFailure
)

func (k Kind) String() string {
	switch k {
	case KindStockInsufficient:
		return "STOCK_INSUFFICIENT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindCollaboratorFailure:
		return "COLLABORATOR_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// User-facing messages.
const (
	MsgOutOfStock   = "requested quantity out of stock"
	MsgAddFailed    = "error adding product"
	MsgRemoveFailed = "error removing product"
	MsgUpdateFailed = "error updating product amount"
)

// errNoOp marks a request that is ignored without notification.
var errNoOp = errors.New("no-op")

type OpError struct {
	Kind      Kind
	Op        string
	ProductID domain.ProductID
	Err       error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s product %d: %s", e.Op, e.ProductID, e.Kind)
	}
	return fmt.Sprintf("%s product %d: %s: %v", e.Op, e.ProductID, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func stockInsufficient(op string, id domain.ProductID, requested, available int) *OpError {
	return &OpError{
		Kind:      KindStockInsufficient,
		Op:        op,
		ProductID: id,
		Err:       fmt.Errorf("requested %d, available %d", requested, available),
	}
}

func notFound(op string, id domain.ProductID) *OpError {
	return &OpError{Kind: KindNotFound, Op: op, ProductID: id}
}

func collaboratorFailure(op string, id domain.ProductID, err error) *OpError {
	return &OpError{Kind: KindCollaboratorFailure, Op: op, ProductID: id, Err: err}
}

// KindOf reports the failure kind of err, defaulting to KindCollaboratorFailure.
func KindOf(err error) Kind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return KindCollaboratorFailure
}
