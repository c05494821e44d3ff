package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"minimarket/utils"
)

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

type Category string

const (
	CategoryFood    Category = "FOOD"
	CategoryNonFood Category = "NON_FOOD"
)

func (c Category) String() string { return string(c) }

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryFood || c == CategoryNonFood
}

// Product is a stock position: one article with its delivery price, expiry date and
// the amount still on the shelf. Quantity only ever goes down, through ReduceQuantity.
type Product struct {
	ID            string
	Name          string
	DeliveryPrice decimal.Decimal // цена доставки за единицу
	Category      Category
	ExpiryDate    time.Time // calendar date, no clock part
	quantity      int
}

// NewProduct validates the arguments and normalizes expiryDate to a calendar date.
func NewProduct(id, name string, deliveryPrice decimal.Decimal, category Category, expiryDate time.Time, quantity int) (*Product, error) {
	if deliveryPrice.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidProduct, "%s: negative delivery price %s", id, deliveryPrice)
	}
	if quantity < 0 {
		return nil, errors.Wrapf(ErrInvalidProduct, "%s: negative quantity %d", id, quantity)
	}
	if !category.Valid() {
		return nil, errors.Wrapf(ErrInvalidProduct, "%s: unknown category %q", id, category)
	}
	return &Product{
		ID:            id,
		Name:          name,
		DeliveryPrice: deliveryPrice,
		Category:      category,
		ExpiryDate:    utils.DateOf(expiryDate),
		quantity:      quantity,
	}, nil
}

// Quantity returns the units left in stock.
func (p *Product) Quantity() int {
	return p.quantity
}

// IsExpiredAt reports whether the expiry date lies strictly before today's date.
func (p *Product) IsExpiredAt(today time.Time) bool {
	return utils.IsBeforeDate(p.ExpiryDate, today)
}

func (p *Product) IsExpired() bool {
	return p.IsExpiredAt(time.Now())
}

// DaysToExpiry counts calendar days from today to the expiry date.
func (p *Product) DaysToExpiry(today time.Time) int {
	return utils.DaysBetween(today, p.ExpiryDate)
}

// SellingPriceAt computes the unit selling price on the given day.
// Expired goods are worth nothing. Goods within daysBeforeExpiryDiscount days of
// expiry get discountPercent off the marked-up price.
func (p *Product) SellingPriceAt(today time.Time, markupPercent decimal.Decimal, daysBeforeExpiryDiscount int, discountPercent decimal.Decimal) decimal.Decimal {
	if p.IsExpiredAt(today) {
		return decimal.Zero
	}

	price := p.DeliveryPrice.Mul(decimal.NewFromInt(1).Add(utils.Percent(markupPercent)))
	if p.DaysToExpiry(today) <= daysBeforeExpiryDiscount {
		price = price.Mul(decimal.NewFromInt(1).Sub(utils.Percent(discountPercent)))
	}
	return price
}

func (p *Product) CalculateSellingPrice(markupPercent decimal.Decimal, daysBeforeExpiryDiscount int, discountPercent decimal.Decimal) decimal.Decimal {
	return p.SellingPriceAt(time.Now(), markupPercent, daysBeforeExpiryDiscount, discountPercent)
}

// CanSupply checks amount against stock without touching it.
func (p *Product) CanSupply(amount int) error {
	if amount < 0 {
		return errors.Wrapf(ErrInvalidQuantity, "%s: %d", p.Name, amount)
	}
	if amount > p.quantity {
		return &InsufficientQuantityError{ProductName: p.Name, Missing: amount - p.quantity}
	}
	return nil
}

// ReduceQuantity takes amount units off the shelf. On error the stock is left as is.
func (p *Product) ReduceQuantity(amount int) error {
	if err := p.CanSupply(amount); err != nil {
		return err
	}
	p.quantity -= amount
	return nil
}

// DeliveryCost is what the remaining stock cost the store.
func (p *Product) DeliveryCost() decimal.Decimal {
	return p.DeliveryPrice.Mul(decimal.NewFromInt(int64(p.quantity)))
}
