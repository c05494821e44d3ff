package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// InsufficientQuantityError is returned when a sale asks for more units than the shelf holds.
type InsufficientQuantityError struct {
	ProductName string
	Missing     int // сколько не хватает
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("Недостатъчно количество от %s. Липсват: %d", e.ProductName, e.Missing)
}

// IsInsufficientQuantity helps callers tell a stock shortage from an I/O failure.
func IsInsufficientQuantity(err error) bool {
	var target *InsufficientQuantityError
	return errors.As(err, &target)
}
