package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"minimarket/utils"
)

const receiptTimeLayout = "2006-01-02T15:04:05"

// ReceiptItem is a sold line frozen at sale time.
type ReceiptItem struct {
	ProductID     string
	Name          string
	Category      Category
	DeliveryPrice decimal.Decimal
	UnitPrice     decimal.Decimal // цена продажи за единицу
	Quantity      int
}

// LineTotal is UnitPrice x Quantity.
func (i ReceiptItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Receipt is the immutable record of one completed sale.
type Receipt struct {
	uuid     uuid.UUID
	number   int
	cashier  Cashier
	issuedAt time.Time
	items    []ReceiptItem
	total    decimal.Decimal
}

// NewReceipt builds a receipt. number comes from the store's Sequence.
func NewReceipt(number int, cashier Cashier, items []ReceiptItem, total decimal.Decimal, issuedAt time.Time) *Receipt {
	frozen := make([]ReceiptItem, len(items))
	copy(frozen, items)
	return &Receipt{
		uuid:     uuid.New(),
		number:   number,
		cashier:  cashier,
		issuedAt: issuedAt,
		items:    frozen,
		total:    total,
	}
}

func (r *Receipt) UUID() uuid.UUID        { return r.uuid }
func (r *Receipt) Number() int            { return r.number }
func (r *Receipt) Cashier() Cashier       { return r.cashier }
func (r *Receipt) IssuedAt() time.Time    { return r.issuedAt }
func (r *Receipt) Total() decimal.Decimal { return r.total }

// Items returns a copy of the sold lines.
func (r *Receipt) Items() []ReceiptItem {
	items := make([]ReceiptItem, len(r.items))
	copy(items, r.items)
	return items
}

// TextFileName is receipt_<N>.txt.
func (r *Receipt) TextFileName() string {
	return fmt.Sprintf("receipt_%d.txt", r.number)
}

// SnapshotFileName is receipt_<N>.ser.
func (r *Receipt) SnapshotFileName() string {
	return fmt.Sprintf("receipt_%d.ser", r.number)
}

// SaveToFile writes the printable receipt and its BSON snapshot into dir.
// A failure halfway leaves a partial file behind; nothing is rolled back.
func (r *Receipt) SaveToFile(dir string) error {
	if err := writeFile(filepath.Join(dir, r.TextFileName()), r.WriteText); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, r.SnapshotFileName()), r.WriteSnapshot)
}

// WriteText prints the human-readable receipt.
// The per-line amount is the delivery price, the total is what the customer paid.
func (r *Receipt) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Касова бележка #%d\n", r.number); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Касиер: %s\n", r.cashier); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Дата: %s\n", r.issuedAt.Format(receiptTimeLayout)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Списък със стоки:"); err != nil {
		return err
	}
	for _, item := range r.items {
		if _, err := fmt.Fprintf(w, "- %s x%d -> %s лв\n", item.Name, item.Quantity, utils.FormatMoney(item.DeliveryPrice)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Общо: %s лв\n", utils.FormatMoney(r.total))
	return err
}

// writeFile opens path, hands a buffered writer to fn and always closes the file.
// The first error among fn, flush and close wins.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = fn(bw); err != nil {
		// Сбрасываем то, что успели сформировать.
		_ = bw.Flush()
		return errors.Wrapf(err, "write %s", path)
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	return nil
}

// Sequence hands out receipt numbers 1, 2, 3, ... for the lifetime of its owner.
type Sequence struct {
	last int
}

// NewSequence starts after the given number; pass 0 for a fresh run.
func NewSequence(start int) *Sequence {
	return &Sequence{last: start}
}

func (s *Sequence) Next() int {
	s.last++
	return s.last
}

func (s *Sequence) Last() int {
	return s.last
}
