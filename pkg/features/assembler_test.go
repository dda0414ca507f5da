package features_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts/artifactstest"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/encoding"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssembler(t *testing.T) *features.Assembler {
	t.Helper()
	reg, err := encoding.NewRegistry(artifactstest.Encoders())
	require.NoError(t, err)
	a, err := features.NewAssembler(reg)
	require.NoError(t, err)
	return a
}

func csvRow(tx features.Transaction) string {
	return strings.Join([]string{
		tx.TransactionType,
		fmt.Sprint(tx.Amount),
		tx.MerchantCategory,
		tx.SenderBank,
		tx.ReceiverBank,
		tx.DeviceType,
		tx.NetworkType,
	}, ",")
}

func TestColumns_TrainingOrder(t *testing.T) {
	assert.Equal(t, []string{
		"transaction type", "amount (INR)", "merchant_category",
		"sender_bank", "receiver_bank", "device_type", "network_type",
	}, features.Columns())
	assert.Len(t, features.Columns(), features.NumFeatures)
	assert.NotContains(t, features.CategoricalColumns(), features.ColAmount)
}

func TestAssembleOne_EncodesInColumnOrder(t *testing.T) {
	a := newAssembler(t)

	v, err := a.AssembleOne(artifactstest.ScenarioA())
	require.NoError(t, err)

	// P2P, 150000, Gambling, Unknown Bank, SBI, Emulator, VPN
	assert.Equal(t, features.Vector{1, 150000, 1, 4, 3, 1, 3}, v)
}

func TestAssembleOne_UnseenLabelsUseFallback(t *testing.T) {
	a := newAssembler(t)
	tx := artifactstest.ScenarioB()
	tx.SenderBank = "Imaginary Bank"
	tx.NetworkType = "Satellite"

	v, err := a.AssembleOne(tx)
	require.NoError(t, err)
	assert.Equal(t, float64(encoding.FallbackCode), v[3])
	assert.Equal(t, float64(encoding.FallbackCode), v[6])
}

func TestAssembleOne_RejectsBadAmount(t *testing.T) {
	a := newAssembler(t)
	tx := artifactstest.ScenarioB()
	tx.Amount = -1

	_, err := a.AssembleOne(tx)
	require.Error(t, err)
	assert.True(t, pkg.IsCode(err, pkg.ErrInvalidInputCode))
}

func TestAssembleTable_MatchesAssembleOne(t *testing.T) {
	a := newAssembler(t)
	txs := []features.Transaction{artifactstest.ScenarioA(), artifactstest.ScenarioB(), artifactstest.ScenarioB()}
	txs[2].MerchantCategory = "Never Seen"

	lines := []string{strings.Join(features.Columns(), ",")}
	for _, tx := range txs {
		lines = append(lines, csvRow(tx))
	}
	tbl, err := features.ParseCSV([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)

	m, err := a.AssembleTable(tbl)
	require.NoError(t, err)
	require.Len(t, m, len(txs))
	for i, tx := range txs {
		want, err := a.AssembleOne(tx)
		require.NoError(t, err)
		assert.Equal(t, []float64(want), m[i], "row %d", i)
	}
}

func TestAssembleTable_IgnoresExtraColumnsAndOrder(t *testing.T) {
	a := newAssembler(t)
	data := "transaction id,network_type,device_type,receiver_bank,sender_bank,merchant_category,amount (INR),transaction type,note\n" +
		"T1,VPN,Emulator,SBI,Unknown Bank,Gambling,150000,P2P,x\n"
	tbl, err := features.ParseCSV([]byte(data))
	require.NoError(t, err)

	m, err := a.AssembleTable(tbl)
	require.NoError(t, err)
	want, _ := a.AssembleOne(artifactstest.ScenarioA())
	assert.Equal(t, []float64(want), m[0])
}

func TestAssembleTable_MissingColumn(t *testing.T) {
	a := newAssembler(t)
	tbl := features.NewTable([]string{features.ColAmount}, [][]string{{"1"}})

	_, err := a.AssembleTable(tbl)
	require.Error(t, err)
	assert.True(t, pkg.IsCode(err, pkg.ErrMissingColumnsCode))
}

func TestAssembleTable_BadRows(t *testing.T) {
	a := newAssembler(t)
	header := features.Columns()

	t.Run("amount", func(t *testing.T) {
		tbl := features.NewTable(header, [][]string{{"P2P", "lots", "Grocery", "SBI", "SBI", "iOS", "4G"}})
		_, err := a.AssembleTable(tbl)
		require.Error(t, err)
		assert.True(t, pkg.IsCode(err, pkg.ErrInvalidInputCode))
		assert.Contains(t, err.Error(), "row 1")
	})

	t.Run("ragged", func(t *testing.T) {
		tbl := features.NewTable(header, [][]string{{"P2P", "10"}})
		_, err := a.AssembleTable(tbl)
		require.Error(t, err)
		assert.True(t, pkg.IsCode(err, pkg.ErrInvalidInputCode))
	})
}

func TestAssembleTable_EmptyTable(t *testing.T) {
	a := newAssembler(t)

	m, err := a.AssembleTable(features.NewTable(features.Columns(), nil))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestNewAssembler_RequiresEveryCategoricalEncoder(t *testing.T) {
	enc := artifactstest.Encoders()
	delete(enc, features.ColDeviceType)
	reg, err := encoding.NewRegistry(enc)
	require.NoError(t, err)

	_, err = features.NewAssembler(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), features.ColDeviceType)
}
