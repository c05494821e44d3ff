package models

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleReceipt(t *testing.T, number int) *Receipt {
	t.Helper()
	cashier, err := NewCashier("001", "Иван Иванов", dec("1200"))
	require.NoError(t, err)

	items := []ReceiptItem{
		{ProductID: "P1", Name: "Мляко", Category: CategoryFood, DeliveryPrice: dec("1.20"), UnitPrice: dec("1.296"), Quantity: 2},
		{ProductID: "P2", Name: "Сапун", Category: CategoryNonFood, DeliveryPrice: dec("0.80"), UnitPrice: dec("1.04"), Quantity: 1},
	}
	issued := time.Date(2026, time.October, 18, 14, 5, 9, 0, time.UTC)
	return NewReceipt(number, cashier, items, dec("3.632"), issued)
}

func TestReceiptWriteText(t *testing.T) {
	r := sampleReceipt(t, 7)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	want := strings.Join([]string{
		"Касова бележка #7",
		"Касиер: Иван Иванов (ID: 001)",
		"Дата: 2026-10-18T14:05:09",
		"Списък със стоки:",
		"- Мляко x2 -> 1.20 лв",
		"- Сапун x1 -> 0.80 лв",
		"Общо: 3.63 лв",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestReceiptItemsAreCopied(t *testing.T) {
	r := sampleReceipt(t, 1)

	items := r.Items()
	items[0].Quantity = 99

	assert.Equal(t, 2, r.Items()[0].Quantity)
	assert.True(t, r.Items()[0].LineTotal().Equal(dec("2.592")))
}

func TestSaveToFileWritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := sampleReceipt(t, 3)

	require.NoError(t, r.SaveToFile(dir))

	text, err := os.ReadFile(filepath.Join(dir, "receipt_3.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(text), "Касова бележка #3\n"))
	assert.True(t, strings.HasSuffix(string(text), "Общо: 3.63 лв\n"))

	loaded, err := LoadReceiptSnapshot(filepath.Join(dir, "receipt_3.ser"))
	require.NoError(t, err)

	assert.Equal(t, r.UUID(), loaded.UUID())
	assert.Equal(t, 3, loaded.Number())
	assert.Equal(t, r.Cashier().String(), loaded.Cashier().String())
	assert.True(t, loaded.Cashier().Salary().Equal(dec("1200")))
	assert.True(t, loaded.IssuedAt().Equal(r.IssuedAt()))
	assert.True(t, loaded.Total().Equal(dec("3.632")))

	require.Len(t, loaded.Items(), 2)
	for i, item := range loaded.Items() {
		orig := r.Items()[i]
		assert.Equal(t, orig.ProductID, item.ProductID)
		assert.Equal(t, orig.Name, item.Name)
		assert.Equal(t, orig.Category, item.Category)
		assert.Equal(t, orig.Quantity, item.Quantity)
		assert.True(t, orig.DeliveryPrice.Equal(item.DeliveryPrice))
		assert.True(t, orig.UnitPrice.Equal(item.UnitPrice))
	}
}

func TestSaveToFileMissingDir(t *testing.T) {
	r := sampleReceipt(t, 1)

	err := r.SaveToFile(filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWriteFileKeepsPartialOutputOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.txt")

	err := writeFile(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "Касова бележка #1\n"); err != nil {
			return err
		}
		return errors.New("bad line")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad line")

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "Касова бележка #1\n", string(data))
}

func TestReadReceiptSnapshotRejectsUnknownVersion(t *testing.T) {
	r := sampleReceipt(t, 1)
	snap, err := r.Snapshot()
	require.NoError(t, err)
	snap.Version = 2

	data, err := bson.Marshal(snap)
	require.NoError(t, err)

	_, err = ReadReceiptSnapshot(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrUnsupportedSnapshot)
}

func TestReadReceiptSnapshotGarbage(t *testing.T) {
	_, err := ReadReceiptSnapshot(strings.NewReader("not bson"))
	assert.Error(t, err)
}

func TestSequence(t *testing.T) {
	seq := NewSequence(0)

	assert.Equal(t, 0, seq.Last())
	assert.Equal(t, 1, seq.Next())
	assert.Equal(t, 2, seq.Next())
	assert.Equal(t, 3, seq.Next())
	assert.Equal(t, 3, seq.Last())

	assert.Equal(t, 41, NewSequence(40).Next())
}
