package models

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SnapshotVersion is bumped on any incompatible change of ReceiptSnapshot.
const SnapshotVersion = 1

var ErrUnsupportedSnapshot = errors.New("unsupported receipt snapshot")

// ReceiptSnapshot is the on-disk layout of receipt_<N>.ser.
type ReceiptSnapshot struct {
	Version  int                   `bson:"v"`
	UUID     string                `bson:"uuid"`
	Number   int                   `bson:"number"`
	IssuedAt time.Time             `bson:"issued_at"`
	Cashier  CashierSnapshot       `bson:"cashier"`
	Items    []ReceiptItemSnapshot `bson:"items"`
	Total    primitive.Decimal128  `bson:"total"`
}

type CashierSnapshot struct {
	ID     string               `bson:"id"`
	Name   string               `bson:"name"`
	Salary primitive.Decimal128 `bson:"salary"`
}

type ReceiptItemSnapshot struct {
	ProductID     string               `bson:"product_id"`
	Name          string               `bson:"name"`
	Category      string               `bson:"category"`
	DeliveryPrice primitive.Decimal128 `bson:"delivery_price"`
	UnitPrice     primitive.Decimal128 `bson:"unit_price"`
	Quantity      int                  `bson:"quantity"`
}

// Snapshot converts the receipt into its versioned storage record.
func (r *Receipt) Snapshot() (ReceiptSnapshot, error) {
	var err error
	snap := ReceiptSnapshot{
		Version:  SnapshotVersion,
		UUID:     r.uuid.String(),
		Number:   r.number,
		IssuedAt: r.issuedAt,
		Cashier:  CashierSnapshot{ID: r.cashier.id, Name: r.cashier.name},
		Items:    make([]ReceiptItemSnapshot, 0, len(r.items)),
	}
	if snap.Cashier.Salary, err = toDecimal128(r.cashier.salary); err != nil {
		return ReceiptSnapshot{}, err
	}
	if snap.Total, err = toDecimal128(r.total); err != nil {
		return ReceiptSnapshot{}, err
	}
	for _, item := range r.items {
		is := ReceiptItemSnapshot{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category.String(),
			Quantity:  item.Quantity,
		}
		if is.DeliveryPrice, err = toDecimal128(item.DeliveryPrice); err != nil {
			return ReceiptSnapshot{}, err
		}
		if is.UnitPrice, err = toDecimal128(item.UnitPrice); err != nil {
			return ReceiptSnapshot{}, err
		}
		snap.Items = append(snap.Items, is)
	}
	return snap, nil
}

// WriteSnapshot encodes the receipt as a single BSON document.
func (r *Receipt) WriteSnapshot(w io.Writer) error {
	snap, err := r.Snapshot()
	if err != nil {
		return err
	}
	data, err := bson.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal receipt snapshot")
	}
	_, err = w.Write(data)
	return err
}

// ReadReceiptSnapshot decodes a receipt written by WriteSnapshot.
func ReadReceiptSnapshot(rd io.Reader) (*Receipt, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	var snap ReceiptSnapshot
	if err := bson.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "unmarshal receipt snapshot")
	}
	return snap.Receipt()
}

// LoadReceiptSnapshot reads receipt_<N>.ser back from disk.
func LoadReceiptSnapshot(path string) (*Receipt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r, err := ReadReceiptSnapshot(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return r, nil
}

// Receipt rebuilds the in-memory receipt from the record.
func (s ReceiptSnapshot) Receipt() (*Receipt, error) {
	if s.Version != SnapshotVersion {
		return nil, errors.Wrapf(ErrUnsupportedSnapshot, "version %d", s.Version)
	}
	id, err := uuid.Parse(s.UUID)
	if err != nil {
		return nil, errors.Wrap(err, "receipt uuid")
	}

	r := &Receipt{
		uuid:     id,
		number:   s.Number,
		issuedAt: s.IssuedAt,
		cashier:  Cashier{id: s.Cashier.ID, name: s.Cashier.Name},
		items:    make([]ReceiptItem, 0, len(s.Items)),
	}
	if r.cashier.salary, err = fromDecimal128(s.Cashier.Salary); err != nil {
		return nil, err
	}
	if r.total, err = fromDecimal128(s.Total); err != nil {
		return nil, err
	}
	for _, is := range s.Items {
		item := ReceiptItem{
			ProductID: is.ProductID,
			Name:      is.Name,
			Category:  Category(is.Category),
			Quantity:  is.Quantity,
		}
		if item.DeliveryPrice, err = fromDecimal128(is.DeliveryPrice); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = fromDecimal128(is.UnitPrice); err != nil {
			return nil, err
		}
		r.items = append(r.items, item)
	}
	return r, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	d128, ok := primitive.ParseDecimal128FromBigInt(d.Coefficient(), int(d.Exponent()))
	if !ok {
		return primitive.Decimal128{}, errors.Errorf("amount %s does not fit into decimal128", d)
	}
	return d128, nil
}

func fromDecimal128(d128 primitive.Decimal128) (decimal.Decimal, error) {
	coef, exp, err := d128.BigInt()
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "decode decimal128")
	}
	return decimal.NewFromBigInt(coef, int32(exp)), nil
}
