// Package store holds the shop itself: its stock, its cashiers and the receipts
// issued so far, plus the arithmetic for revenue, expenses and profit.
//
// A Store is meant for a single caller and is not safe for concurrent use.
package store

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"minimarket/metrics"
	"minimarket/models"
	"minimarket/utils"
)

// Pricing is the store-wide price policy.
type Pricing struct {
	FoodMarkup          decimal.Decimal // наценка на продукты, %
	NonFoodMarkup       decimal.Decimal // наценка на непродовольственные товары, %
	ExpiryThresholdDays int             // за сколько дней до истечения срока включается скидка
	DiscountPercent     decimal.Decimal
}

// MarkupFor picks the markup for a category.
func (p Pricing) MarkupFor(c models.Category) decimal.Decimal {
	if c == models.CategoryFood {
		return p.FoodMarkup
	}
	return p.NonFoodMarkup
}

type Store struct {
	pricing  Pricing
	products []*models.Product
	cashiers []models.Cashier
	receipts []*models.Receipt

	seq        *models.Sequence
	receiptDir string
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*Store)

// WithReceiptDir makes every sale write its receipt files into dir.
// Without it receipts are kept in memory only.
func WithReceiptDir(dir string) Option {
	return func(s *Store) { s.receiptDir = dir }
}

func WithSequence(seq *models.Sequence) Option {
	return func(s *Store) { s.seq = seq }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock replaces time.Now for pricing, expiry checks and receipt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(pricing Pricing, opts ...Option) *Store {
	s := &Store{
		pricing: pricing,
		seq:     models.NewSequence(0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Pricing() Pricing {
	return s.pricing
}

// AddProduct registers a product. IDs are not checked for uniqueness; lookups
// use the first product added under an ID.
func (s *Store) AddProduct(p *models.Product) {
	s.products = append(s.products, p)
}

func (s *Store) AddCashier(c models.Cashier) {
	s.cashiers = append(s.cashiers, c)
}

// FindProduct returns the first product registered under id.
func (s *Store) FindProduct(id string) (*models.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Products returns the registered products. The pointers are shared with the store.
func (s *Store) Products() []*models.Product {
	out := make([]*models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Cashiers() []models.Cashier {
	out := make([]models.Cashier, len(s.cashiers))
	copy(out, s.cashiers)
	return out
}

// Receipts returns the issued receipts, oldest first.
func (s *Store) Receipts() []*models.Receipt {
	out := make([]*models.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// CalculateExpenses is salaries plus the delivery cost of the stock still on the shelves.
func (s *Store) CalculateExpenses() decimal.Decimal {
	costs := make([]decimal.Decimal, 0, len(s.cashiers)+len(s.products))
	for _, c := range s.cashiers {
		costs = append(costs, c.Salary())
	}
	for _, p := range s.products {
		costs = append(costs, p.DeliveryCost())
	}
	return utils.SumMoney(costs...)
}

func (s *Store) CalculateRevenue() decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(s.receipts))
	for _, r := range s.receipts {
		totals = append(totals, r.Total())
	}
	return utils.SumMoney(totals...)
}

func (s *Store) CalculateProfit() decimal.Decimal {
	return s.CalculateRevenue().Sub(s.CalculateExpenses())
}

func (s *Store) GetReceiptCount() int {
	return len(s.receipts)
}

// saleLine is a requested line that passed the lookup.
type saleLine struct {
	product  *models.Product
	quantity int
}

// SellProducts sells the requested quantities (product ID -> units) on behalf of cashier.
//
// Lines naming an unknown or expired product, or a negative quantity, are
// dropped; zero-quantity lines stay on the receipt. If any remaining line asks
// for more than is in stock the sale fails with *models.InsufficientQuantityError
// and no stock is touched. Otherwise stock
// is reduced, a receipt is issued, written to the receipt dir and returned.
func (s *Store) SellProducts(cashier models.Cashier, requested map[string]int) (*models.Receipt, error) {
	today := s.now()
	lines := s.resolve(requested, today)

	for _, line := range lines {
		if err := line.product.CanSupply(line.quantity); err != nil {
			s.observeFailure()
			zap.S().Warnf("sale by %s rejected: %v", cashier, err)
			return nil, err
		}
	}

	items := make([]models.ReceiptItem, 0, len(lines))
	units := make(map[string]int)
	total := decimal.Zero
	for _, line := range lines {
		p := line.product
		if err := p.ReduceQuantity(line.quantity); err != nil {
			// CanSupply passed above and nothing ran in between.
			return nil, errors.Wrap(err, "reduce quantity")
		}
		price := p.SellingPriceAt(today, s.pricing.MarkupFor(p.Category), s.pricing.ExpiryThresholdDays, s.pricing.DiscountPercent)
		item := models.ReceiptItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Category:      p.Category,
			DeliveryPrice: p.DeliveryPrice,
			UnitPrice:     price,
			Quantity:      line.quantity,
		}
		items = append(items, item)
		units[p.Category.String()] += line.quantity
		total = total.Add(item.LineTotal())
	}

	receipt := models.NewReceipt(s.seq.Next(), cashier, items, total, today)
	if s.receiptDir != "" {
		if err := receipt.SaveToFile(s.receiptDir); err != nil {
			s.observeFailure()
			zap.S().Errorf("receipt #%d not saved: %v", receipt.Number(), err)
			return nil, errors.Wrapf(err, "save receipt #%d", receipt.Number())
		}
	}
	s.receipts = append(s.receipts, receipt)

	if s.metrics != nil {
		s.metrics.ObserveSale(total, units)
	}
	zap.S().Infof("receipt #%d issued by %s: %d lines, total %s", receipt.Number(), cashier, len(items), total.StringFixed(2))
	return receipt, nil
}

// resolve looks up the requested lines in ID order and drops the ones that cannot be sold.
func (s *Store) resolve(requested map[string]int, today time.Time) []saleLine {
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]saleLine, 0, len(ids))
	for _, id := range ids {
		qty := requested[id]
		p, ok := s.FindProduct(id)
		switch {
		case !ok:
			s.skip(id, metrics.ReasonUnknownProduct)
		case p.IsExpiredAt(today):
			s.skip(id, metrics.ReasonExpired)
		case qty < 0:
			s.skip(id, metrics.ReasonInvalidQuantity)
		default:
			lines = append(lines, saleLine{product: p, quantity: qty})
		}
	}
	return lines
}

func (s *Store) skip(id, reason string) {
	zap.S().Debugf("skipping sale line %s: %s", id, reason)
	if s.metrics != nil {
		s.metrics.ObserveSkip(reason)
	}
}

func (s *Store) observeFailure() {
	if s.metrics != nil {
		s.metrics.ObserveFailure()
	}
}
