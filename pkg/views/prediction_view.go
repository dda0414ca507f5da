package views

import (
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
)

// PredictRequest is the JSON body of a single-transaction prediction.
type PredictRequest struct {
	TransactionType  string   `json:"transaction_type" binding:"required" example:"P2P"`
	Amount           *float64 `json:"amount" binding:"required,gte=0" example:"150000"`
	MerchantCategory string   `json:"merchant_category" binding:"required" example:"Gambling"`
	SenderBank       string   `json:"sender_bank" binding:"required" example:"Unknown Bank"`
	ReceiverBank     string   `json:"receiver_bank" binding:"required" example:"SBI"`
	DeviceType       string   `json:"device_type" binding:"required" example:"Emulator"`
	NetworkType      string   `json:"network_type" binding:"required" example:"VPN"`
}

// ToTransaction maps the request onto the feature-assembly input.
func (r PredictRequest) ToTransaction() features.Transaction {
	var amount float64
	if r.Amount != nil {
		amount = *r.Amount
	}
	return features.Transaction{
		TransactionType:  r.TransactionType,
		Amount:           amount,
		MerchantCategory: r.MerchantCategory,
		SenderBank:       r.SenderBank,
		ReceiverBank:     r.ReceiverBank,
		DeviceType:       r.DeviceType,
		NetworkType:      r.NetworkType,
	}
}

// PredictResponse is the verdict of one transaction.
type PredictResponse struct {
	Prediction       pkg.Verdict `json:"prediction" example:"Fraudulent"`
	IsFraud          int         `json:"is_fraud" example:"1"`
	FraudProbability float64     `json:"fraud_probability" example:"0.8333"`
}

// FraudRow is one flagged row of a batch upload. TransactionID is omitted when
// the upload has no "transaction id" column.
type FraudRow struct {
	TransactionID   *string `json:"transaction id,omitempty"`
	TransactionType string  `json:"transaction type"`
	Amount          float64 `json:"amount (INR)"`
	SenderBank      string  `json:"sender_bank"`
	FraudProb       string  `json:"fraud_prob" example:"83.33%"`
}

// BatchResult summarises a batch upload.
type BatchResult struct {
	Message        string     `json:"message" example:"Analysis Complete"`
	TotalProcessed int        `json:"total_processed"`
	FraudCount     int        `json:"fraud_count"`
	Frauds         []FraudRow `json:"frauds"`
}

const BatchCompleteMessage = "Analysis Complete"
