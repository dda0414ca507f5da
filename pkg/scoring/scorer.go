// Package scoring runs the loaded classifier over assembled feature rows.
package scoring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/model"
)

// FraudLabel is the classifier label of a fraudulent transaction.
const FraudLabel = 1

const defaultChunkSize = 4096

// Scorer wraps a read-only classifier. Safe for concurrent use.
type Scorer struct {
	clf       model.Classifier
	classes   []int
	fraudIdx  int
	chunkSize int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithChunkSize sets how many rows one goroutine scores. Tables no larger than
// one chunk are scored on the calling goroutine.
func WithChunkSize(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// New creates a scorer for clf. The classifier must know the fraud label.
func New(clf model.Classifier, opts ...Option) (*Scorer, error) {
	if clf == nil {
		return nil, errors.New("scoring: nil classifier")
	}
	classes := clf.Classes()
	fraudIdx := -1
	for i, c := range classes {
		if c == FraudLabel {
			fraudIdx = i
		}
	}
	if fraudIdx < 0 {
		return nil, fmt.Errorf("scoring: classifier classes %v do not include fraud label %d", classes, FraudLabel)
	}
	if clf.NumFeatures() != features.NumFeatures {
		return nil, fmt.Errorf("scoring: classifier expects %d features, assembler produces %d", clf.NumFeatures(), features.NumFeatures)
	}
	s := &Scorer{clf: clf, classes: classes, fraudIdx: fraudIdx, chunkSize: defaultChunkSize}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// ScoreOne scores a single feature vector.
func (s *Scorer) ScoreOne(v features.Vector) (int, float64, error) {
	if len(v) != features.NumFeatures {
		return 0, 0, fmt.Errorf("scoring: vector has %d features, want %d", len(v), features.NumFeatures)
	}
	label, p := s.scoreRow(v)
	return label, p, nil
}

// Score returns the predicted label and fraud probability of every row, in row order.
func (s *Scorer) Score(m features.Matrix) ([]int, []float64, error) {
	for i, row := range m {
		if len(row) != features.NumFeatures {
			return nil, nil, fmt.Errorf("scoring: row %d has %d features, want %d", i, len(row), features.NumFeatures)
		}
	}

	labels := make([]int, len(m))
	probs := make([]float64, len(m))
	if len(m) <= s.chunkSize {
		s.scoreRange(m, labels, probs, 0, len(m))
		return labels, probs, nil
	}

	// each goroutine owns a disjoint index range, so writes need no locking
	var wg sync.WaitGroup
	for start := 0; start < len(m); start += s.chunkSize {
		end := min(start+s.chunkSize, len(m))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			s.scoreRange(m, labels, probs, lo, hi)
		}(start, end)
	}
	wg.Wait()
	return labels, probs, nil
}

func (s *Scorer) scoreRange(m features.Matrix, labels []int, probs []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		labels[i], probs[i] = s.scoreRow(m[i])
	}
}

// scoreRow takes the label as the most probable class (first wins ties), the
// same rule the classifier's own Predict applies, so one pass yields both.
func (s *Scorer) scoreRow(x []float64) (int, float64) {
	proba := s.clf.PredictProba(x)
	best := 0
	for k := 1; k < len(proba); k++ {
		if proba[k] > proba[best] {
			best = k
		}
	}
	return s.classes[best], proba[s.fraudIdx]
}

// Classifier returns the wrapped classifier.
func (s *Scorer) Classifier() model.Classifier { return s.clf }
