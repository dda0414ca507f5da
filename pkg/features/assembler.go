// Package features turns transactions into the fixed-order numeric rows the classifier was trained on.
package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/encoding"
)

// Column names as they appear in training data and batch uploads.
const (
	ColTransactionType  = "transaction type"
	ColAmount           = "amount (INR)"
	ColMerchantCategory = "merchant_category"
	ColSenderBank       = "sender_bank"
	ColReceiverBank     = "receiver_bank"
	ColDeviceType       = "device_type"
	ColNetworkType      = "network_type"

	// ColTransactionID is an optional passthrough column, never a feature.
	ColTransactionID = "transaction id"
)

// Transaction is one raw record to score.
type Transaction struct {
	TransactionType  string
	Amount           float64
	MerchantCategory string
	SenderBank       string
	ReceiverBank     string
	DeviceType       string
	NetworkType      string
}

// Vector is one assembled feature row; Matrix is a table of them.
type (
	Vector []float64
	Matrix [][]float64
)

type column struct {
	name        string
	categorical bool
	value       func(Transaction) string
}

// schema is the training column order. Both assembly paths iterate it, so their
// order cannot drift apart. Reordering it corrupts every prediction.
var schema = []column{
	{name: ColTransactionType, categorical: true, value: func(t Transaction) string { return t.TransactionType }},
	{name: ColAmount},
	{name: ColMerchantCategory, categorical: true, value: func(t Transaction) string { return t.MerchantCategory }},
	{name: ColSenderBank, categorical: true, value: func(t Transaction) string { return t.SenderBank }},
	{name: ColReceiverBank, categorical: true, value: func(t Transaction) string { return t.ReceiverBank }},
	{name: ColDeviceType, categorical: true, value: func(t Transaction) string { return t.DeviceType }},
	{name: ColNetworkType, categorical: true, value: func(t Transaction) string { return t.NetworkType }},
}

// NumFeatures is the width of every assembled row.
const NumFeatures = 7

// Columns returns the feature columns in training order.
func Columns() []string {
	out := make([]string, len(schema))
	for i, c := range schema {
		out[i] = c.name
	}
	return out
}

// CategoricalColumns returns the columns routed through the encoder registry.
func CategoricalColumns() []string {
	var out []string
	for _, c := range schema {
		if c.categorical {
			out = append(out, c.name)
		}
	}
	return out
}

// Assembler builds feature rows from transactions using a fixed encoder registry.
type Assembler struct {
	encoders []*encoding.Encoder // aligned with schema; nil for numeric columns
}

// NewAssembler resolves one encoder per categorical column. A registry without
// an encoder for some categorical column is rejected here, so no request ever
// tries to encode a field the registry does not know.
func NewAssembler(reg *encoding.Registry) (*Assembler, error) {
	if reg == nil {
		return nil, errors.New("features: nil encoder registry")
	}
	a := &Assembler{encoders: make([]*encoding.Encoder, len(schema))}
	var missing []string
	for i, c := range schema {
		if !c.categorical {
			continue
		}
		enc, ok := reg.Encoder(c.name)
		if !ok {
			missing = append(missing, c.name)
			continue
		}
		a.encoders[i] = enc
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("features: encoder registry has no encoder for %q", missing)
	}
	return a, nil
}

// AssembleOne builds the feature vector of a single transaction.
func (a *Assembler) AssembleOne(tx Transaction) (Vector, error) {
	if err := checkAmount(tx.Amount); err != nil {
		return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid amount", err)
	}
	v := make(Vector, len(schema))
	for i, c := range schema {
		if !c.categorical {
			v[i] = tx.Amount
			continue
		}
		v[i] = float64(a.encoders[i].Encode(c.value(tx)))
	}
	return v, nil
}

// AssembleTable builds the feature matrix of an uploaded table. Required columns
// are validated first; a missing column aborts before any row is touched.
//
// Categorical columns are encoded once per distinct value and the code reused for
// every row holding it, keeping the pass linear in the number of rows.
func (a *Assembler) AssembleTable(t *Table) (Matrix, error) {
	if err := ValidateColumns(t); err != nil {
		return nil, err
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return nil, pkg.NewAppError(pkg.ErrInvalidInputCode,
				fmt.Sprintf("row %d: expected %d fields, got %d", i+1, len(t.Header), len(row)), nil)
		}
	}

	n := t.Len()
	width := len(schema)
	backing := make([]float64, n*width)
	m := make(Matrix, n)
	for i := range m {
		m[i] = backing[i*width : (i+1)*width : (i+1)*width]
	}

	for j, c := range schema {
		src, _ := t.Column(c.name)
		if !c.categorical {
			for i, row := range t.Rows {
				amount, err := parseAmount(row[src])
				if err != nil {
					return nil, pkg.NewAppError(pkg.ErrInvalidInputCode,
						fmt.Sprintf("row %d: invalid %s %q", i+1, c.name, row[src]), err)
				}
				m[i][j] = amount
			}
			continue
		}

		enc := a.encoders[j]
		codes := make(map[string]float64)
		for i, row := range t.Rows {
			raw := row[src]
			code, ok := codes[raw]
			if !ok {
				code = float64(enc.Encode(raw))
				codes[raw] = code
			}
			m[i][j] = code
		}
	}
	return m, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if err := checkAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("amount must be a finite number")
	}
	if v < 0 {
		return errors.New("amount must be non-negative")
	}
	return nil
}
