package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"minimarket/models"
	"minimarket/utils"
)

const JournalFileName = "sales_journal.csv"

// Ledger is the part of the store the reports read from.
type Ledger interface {
	CalculateRevenue() decimal.Decimal
	CalculateExpenses() decimal.Decimal
	CalculateProfit() decimal.Decimal
	GetReceiptCount() int
	Receipts() []*models.Receipt
}

// Summary is the financial state of the store at one moment.
type Summary struct {
	Revenue      decimal.Decimal
	Expenses     decimal.Decimal
	Profit       decimal.Decimal
	ReceiptCount int
}

func Summarize(l Ledger) Summary {
	return Summary{
		Revenue:      l.CalculateRevenue(),
		Expenses:     l.CalculateExpenses(),
		Profit:       l.CalculateProfit(),
		ReceiptCount: l.GetReceiptCount(),
	}
}

// Lines renders the summary the way the shop prints it at closing time.
func (s Summary) Lines() []string {
	return []string{
		"Оборот: " + utils.FormatMoney(s.Revenue),
		"Разходи: " + utils.FormatMoney(s.Expenses),
		"Печалба: " + utils.FormatMoney(s.Profit),
		"Издадени касови бележки: " + strconv.Itoa(s.ReceiptCount),
	}
}

// JournalRow is one receipt in the sales journal.
type JournalRow struct {
	Number   int    `csv:"number"`
	UUID     string `csv:"uuid"`
	Cashier  string `csv:"cashier"`
	IssuedAt string `csv:"issued_at"`
	Items    string `csv:"items"`
	Total    string `csv:"total"`
}

// Journal turns receipts into journal rows, oldest first.
func Journal(receipts []*models.Receipt) []*JournalRow {
	rows := make([]*JournalRow, 0, len(receipts))
	for _, r := range receipts {
		items := make([]string, 0, len(r.Items()))
		for _, item := range r.Items() {
			items = append(items, fmt.Sprintf("%sx%d", item.ProductID, item.Quantity))
		}
		rows = append(rows, &JournalRow{
			Number:   r.Number(),
			UUID:     r.UUID().String(),
			Cashier:  r.Cashier().String(),
			IssuedAt: r.IssuedAt().Format(time.RFC3339),
			Items:    strings.Join(items, ";"),
			Total:    utils.FormatMoney(r.Total()),
		})
	}
	return rows
}

// WriteJournal writes the sales journal of l into dir/sales_journal.csv, replacing the old one.
func WriteJournal(dir string, l Ledger) (string, error) {
	path := filepath.Join(dir, JournalFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	rows := Journal(l.Receipts())
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, f.Sync()
}

// ReadJournal loads a journal written by WriteJournal.
func ReadJournal(path string) ([]*JournalRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var rows []*JournalRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return rows, nil
}
