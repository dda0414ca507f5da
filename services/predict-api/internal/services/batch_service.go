package services

import (
	"context"
	"time"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/scoring"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/utils"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/observability"
	"go.uber.org/zap"
)

type BatchService interface {
	PredictBatch(ctx context.Context, traceId string, csvData []byte) (views.BatchResult, error)
}

type BatchServiceImpl struct {
	logger *zap.Logger
	ic     *artifacts.InferenceContext
}

func NewBatchService(logger *zap.Logger, ic *artifacts.InferenceContext) BatchService {
	return &BatchServiceImpl{logger: logger, ic: ic}
}

// PredictBatch scores every row of an uploaded CSV and returns the rows labelled
// fraud. The upload is rejected as a whole when a feature column is missing or a
// row cannot be assembled; nothing is scored in that case.
func (s *BatchServiceImpl) PredictBatch(ctx context.Context, traceId string, csvData []byte) (views.BatchResult, error) {
	if err := requireReady(s.ic); err != nil {
		observability.PredictionsFailed.WithLabelValues(pkg.PathBatch, pkg.ErrModelUnavailableCode.Code).Inc()
		return views.BatchResult{}, err
	}
	start := time.Now()

	table, err := features.ParseCSV(csvData)
	if err != nil {
		return views.BatchResult{}, failed(pkg.PathBatch, err)
	}
	m, err := s.ic.Assembler().AssembleTable(table)
	if err != nil {
		return views.BatchResult{}, failed(pkg.PathBatch, err)
	}
	if err := ctx.Err(); err != nil {
		return views.BatchResult{}, failed(pkg.PathBatch, err)
	}
	labels, probs, err := s.ic.Scorer().Score(m)
	if err != nil {
		return views.BatchResult{}, failed(pkg.PathBatch, err)
	}
	observability.InferenceLatency.WithLabelValues(pkg.PathBatch).Observe(time.Since(start).Seconds())
	observability.BatchRows.Observe(float64(table.Len()))

	amountCol := columnIndex(features.ColAmount)
	frauds := make([]views.FraudRow, 0)
	for i, label := range labels {
		if label != scoring.FraudLabel {
			continue
		}
		row := views.FraudRow{
			Amount:    m[i][amountCol],
			FraudProb: utils.FormatPercent(probs[i]),
		}
		if id, ok := table.Value(i, features.ColTransactionID); ok {
			row.TransactionID = &id
		}
		row.TransactionType, _ = table.Value(i, features.ColTransactionType)
		row.SenderBank, _ = table.Value(i, features.ColSenderBank)
		frauds = append(frauds, row)
	}

	legit := len(labels) - len(frauds)
	observability.Verdicts.WithLabelValues(pkg.PathBatch, string(pkg.VerdictFraudulent)).Add(float64(len(frauds)))
	observability.Verdicts.WithLabelValues(pkg.PathBatch, string(pkg.VerdictLegitimate)).Add(float64(legit))
	s.logger.Info("batch scored",
		zap.String(pkg.TraceId, traceId),
		zap.Int("total_processed", table.Len()),
		zap.Int("fraud_count", len(frauds)),
		zap.Duration("took", time.Since(start)))

	return views.BatchResult{
		Message:        views.BatchCompleteMessage,
		TotalProcessed: table.Len(),
		FraudCount:     len(frauds),
		Frauds:         frauds,
	}, nil
}

func columnIndex(name string) int {
	for i, c := range features.Columns() {
		if c == name {
			return i
		}
	}
	return -1
}
