// Package artifactstest provides a small matched model/encoder pair for tests.
//
// The forest has three trees that reproduce the fraud pattern of the training
// data: large amounts over VPN, emulator devices and gambling merchants.
package artifactstest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/model"
	"github.com/stretchr/testify/require"
)

const ModelVersion = "fixture-v1"

// Encoders returns the training classes of every categorical column.
func Encoders() map[string][]string {
	banks := []string{"Axis", "HDFC", "ICICI", "SBI", "Unknown Bank"}
	return map[string][]string{
		features.ColTransactionType:  {"P2M", "P2P"},
		features.ColMerchantCategory: {"Electronics", "Gambling", "Grocery", "Travel"},
		features.ColSenderBank:       append([]string(nil), banks...),
		features.ColReceiverBank:     append([]string(nil), banks...),
		features.ColDeviceType:       {"Android", "Emulator", "iOS"},
		features.ColNetworkType:      {"3G", "4G", "5G", "VPN", "WiFi"},
	}
}

// Forest returns the fixture classifier, not yet validated.
func Forest() *model.Forest {
	split := func(feature int, threshold float64, left, midLeft, right []float64) *model.Tree {
		return &model.Tree{
			ChildrenLeft:  []int{1, -1, 3, -1, -1},
			ChildrenRight: []int{2, -1, 4, -1, -1},
			Feature:       []int{feature, -2, feature, -2, -2},
			Threshold:     []float64{threshold, -2, threshold + 1, -2, -2},
			Value:         [][]float64{{50, 50}, left, {25, 25}, midLeft, right},
		}
	}
	amountNetwork := &model.Tree{
		// amount <= 50000 ? legit : (network <= 5G ? mixed : fraud)
		ChildrenLeft:  []int{1, -1, 3, -1, -1},
		ChildrenRight: []int{2, -1, 4, -1, -1},
		Feature:       []int{1, -2, 6, -2, -2},
		Threshold:     []float64{50000, -2, 2.5, -2, -2},
		Value:         [][]float64{{50, 50}, {9, 1}, {25, 25}, {6, 4}, {1, 9}},
	}
	return &model.Forest{
		Version:      ModelVersion,
		ClassLabels:  []int{0, 1},
		Features:     features.NumFeatures,
		FeatureNames: features.Columns(),
		Trees: []*model.Tree{
			amountNetwork,
			// device: Android | Emulator | iOS
			split(5, 0.5, []float64{9, 1}, []float64{2, 8}, []float64{8, 2}),
			// merchant: Electronics | Gambling | Grocery, Travel
			split(2, 0.5, []float64{7, 3}, []float64{2, 8}, []float64{9, 1}),
		},
	}
}

// ScenarioA is a transaction the fixture scores as fraud (P ~ 0.8333).
func ScenarioA() features.Transaction {
	return features.Transaction{
		TransactionType:  "P2P",
		Amount:           150000,
		MerchantCategory: "Gambling",
		SenderBank:       "Unknown Bank",
		ReceiverBank:     "SBI",
		DeviceType:       "Emulator",
		NetworkType:      "VPN",
	}
}

// ScenarioB is a transaction the fixture scores as legitimate (P ~ 0.1).
func ScenarioB() features.Transaction {
	return features.Transaction{
		TransactionType:  "P2M",
		Amount:           250,
		MerchantCategory: "Grocery",
		SenderBank:       "HDFC",
		ReceiverBank:     "ICICI",
		DeviceType:       "Android",
		NetworkType:      "WiFi",
	}
}

// EncodersJSON returns the encoder artifact bytes.
func EncodersJSON(t testing.TB) []byte {
	t.Helper()
	b, err := json.Marshal(Encoders())
	require.NoError(t, err)
	return b
}

// ModelJSON returns the model artifact bytes bound to the given encoder bytes.
// Pass nil to omit the encoder digest.
func ModelJSON(t testing.TB, encoders []byte) []byte {
	t.Helper()
	f := Forest()
	if encoders != nil {
		sum := sha256.Sum256(encoders)
		f.EncodersSHA256 = hex.EncodeToString(sum[:])
	}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	return b
}

// WritePair writes a matched artifact pair to a temp dir and returns its paths.
func WritePair(t testing.TB) artifacts.Paths {
	t.Helper()
	dir := t.TempDir()
	enc := EncodersJSON(t)
	paths := artifacts.Paths{
		Model:    filepath.Join(dir, "model.json"),
		Encoders: filepath.Join(dir, "encoders.json"),
	}
	require.NoError(t, os.WriteFile(paths.Encoders, enc, 0o600))
	require.NoError(t, os.WriteFile(paths.Model, ModelJSON(t, enc), 0o600))
	return paths
}

// Context returns a Ready inference context built from the fixture pair.
func Context(t testing.TB) *artifacts.InferenceContext {
	t.Helper()
	f := Forest()
	require.NoError(t, f.Validate())
	reg, err := artifacts.LoadEncoders(EncodersJSON(t))
	require.NoError(t, err)
	ic, err := artifacts.New(f, reg)
	require.NoError(t, err)
	return ic
}
