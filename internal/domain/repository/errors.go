package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by mutation methods whose target row does not
// exist, so callers need not depend on the storage driver's error.
var ErrNotFound = errors.New("record not found")

// InsufficientStockError reports products whose guarded stock decrement
// matched zero rows; the surrounding transaction has been rolled back.
type InsufficientStockError struct {
	ProductIDs []uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.ProductIDs))
}
