package main

import (
	"encoding/json"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/services"
	"github.com/spf13/cobra"
)

func predictCmd(flags *artifactFlags) *cobra.Command {
	var tx features.Transaction
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a single transaction given as flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flags.logger()
			var (
				resp views.PredictResponse
				err  error
			)
			if remote := flags.remote(logger); remote != nil {
				resp, err = remote.Predict(cmd.Context(), toRequest(tx))
			} else {
				svc := services.NewPredictionService(logger, flags.load(logger))
				resp, err = svc.Predict(cmd.Context(), "fraudctl", tx)
			}
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
		},
	}
	f := cmd.Flags()
	f.StringVar(&tx.TransactionType, "type", "", "Transaction type, e.g. P2P")
	f.Float64Var(&tx.Amount, "amount", 0, "Amount in INR")
	f.StringVar(&tx.MerchantCategory, "merchant-category", "", "Merchant category")
	f.StringVar(&tx.SenderBank, "sender-bank", "", "Sender bank")
	f.StringVar(&tx.ReceiverBank, "receiver-bank", "", "Receiver bank")
	f.StringVar(&tx.DeviceType, "device-type", "", "Device type")
	f.StringVar(&tx.NetworkType, "network-type", "", "Network type")
	for _, name := range []string{"type", "amount", "merchant-category", "sender-bank", "receiver-bank", "device-type", "network-type"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func toRequest(tx features.Transaction) views.PredictRequest {
	amount := tx.Amount
	return views.PredictRequest{
		TransactionType:  tx.TransactionType,
		Amount:           &amount,
		MerchantCategory: tx.MerchantCategory,
		SenderBank:       tx.SenderBank,
		ReceiverBank:     tx.ReceiverBank,
		DeviceType:       tx.DeviceType,
		NetworkType:      tx.NetworkType,
	}
}
