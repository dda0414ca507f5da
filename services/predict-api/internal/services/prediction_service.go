package services

import (
	"context"
	"errors"
	"time"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/utils"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/observability"
	"go.uber.org/zap"
)

type PredictionService interface {
	Predict(ctx context.Context, traceId string, tx features.Transaction) (views.PredictResponse, error)
}

type PredictionServiceImpl struct {
	logger *zap.Logger
	ic     *artifacts.InferenceContext
}

func NewPredictionService(logger *zap.Logger, ic *artifacts.InferenceContext) PredictionService {
	return &PredictionServiceImpl{logger: logger, ic: ic}
}

func (s *PredictionServiceImpl) Predict(ctx context.Context, traceId string, tx features.Transaction) (views.PredictResponse, error) {
	if err := requireReady(s.ic); err != nil {
		observability.PredictionsFailed.WithLabelValues(pkg.PathSingle, pkg.ErrModelUnavailableCode.Code).Inc()
		return views.PredictResponse{}, err
	}
	start := time.Now()

	v, err := s.ic.Assembler().AssembleOne(tx)
	if err != nil {
		return views.PredictResponse{}, failed(pkg.PathSingle, err)
	}
	label, p, err := s.ic.Scorer().ScoreOne(v)
	if err != nil {
		return views.PredictResponse{}, failed(pkg.PathSingle, err)
	}
	observability.InferenceLatency.WithLabelValues(pkg.PathSingle).Observe(time.Since(start).Seconds())

	verdict := pkg.VerdictFor(label)
	observability.Verdicts.WithLabelValues(pkg.PathSingle, string(verdict)).Inc()
	s.logger.Debug("transaction scored",
		zap.String(pkg.TraceId, traceId),
		zap.String("verdict", string(verdict)),
		zap.Float64("fraud_probability", p))

	isFraud := 0
	if verdict == pkg.VerdictFraudulent {
		isFraud = 1
	}
	return views.PredictResponse{
		Prediction:       verdict,
		IsFraud:          isFraud,
		FraudProbability: utils.RoundProbability(p),
	}, nil
}

func requireReady(ic *artifacts.InferenceContext) error {
	if ic == nil {
		return pkg.NewAppError(pkg.ErrModelUnavailableCode, pkg.ErrModelUnavailableCode.Message, pkg.ErrModelNotLoaded)
	}
	if !ic.Ready() {
		return pkg.NewAppError(pkg.ErrModelUnavailableCode, pkg.ErrModelUnavailableCode.Message,
			errors.Join(pkg.ErrModelNotLoaded, ic.Err()))
	}
	return nil
}

// failed keeps classified errors as they are and turns anything else into an
// inference failure carrying its cause.
func failed(path string, err error) error {
	var appErr pkg.AppError
	if !errors.As(err, &appErr) {
		err = pkg.NewAppError(pkg.ErrInferenceCode, "inference failed: "+err.Error(), err)
		appErr.Code = pkg.ErrInferenceCode
	}
	observability.PredictionsFailed.WithLabelValues(path, appErr.Code.Code).Inc()
	return err
}
