package models

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrInvalidCashier = errors.New("invalid cashier")

// Cashier is immutable once built; pass it around by value.
type Cashier struct {
	id     string
	name   string
	salary decimal.Decimal
}

func NewCashier(id, name string, salary decimal.Decimal) (Cashier, error) {
	if salary.IsNegative() {
		return Cashier{}, errors.Wrapf(ErrInvalidCashier, "%s: negative salary %s", id, salary)
	}
	return Cashier{id: id, name: name, salary: salary}, nil
}

func (c Cashier) ID() string              { return c.id }
func (c Cashier) Name() string            { return c.name }
func (c Cashier) Salary() decimal.Decimal { return c.salary }

func (c Cashier) String() string {
	return fmt.Sprintf("%s (ID: %s)", c.name, c.id)
}
