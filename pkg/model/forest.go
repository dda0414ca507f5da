// Package model holds the trained tree-ensemble classifier loaded at serving time.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// leaf marks a node without children, as in sklearn's tree export.
const leaf = -1

// Classifier scores feature rows. PredictProba returns one probability per class,
// aligned with Classes().
type Classifier interface {
	Predict(x []float64) int
	PredictProba(x []float64) []float64
	Classes() []int
	NumFeatures() int
}

// Tree is one fitted decision tree in sklearn's parallel-array layout.
// Node i splits on Feature[i]: x <= Threshold[i] goes to ChildrenLeft[i],
// otherwise ChildrenRight[i]. Value[i] holds per-class weights at node i.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`

	proba [][]float64 // Value normalised per node
}

// Forest is a fitted random forest. It is read-only after Load and safe for concurrent use.
type Forest struct {
	Version        string   `json:"version"`
	ClassLabels    []int    `json:"classes"`
	Features       int      `json:"n_features"`
	FeatureNames   []string `json:"feature_names,omitempty"`
	EncodersSHA256 string   `json:"encoders_sha256,omitempty"`
	Trees          []*Tree  `json:"trees"`
}

var _ Classifier = (*Forest)(nil)

// Load decodes a forest from its JSON export and validates it.
func Load(r io.Reader) (*Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("model: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the forest is structurally sound and precomputes leaf probabilities.
func (f *Forest) Validate() error {
	if len(f.ClassLabels) < 2 {
		return errors.New("model: at least two classes required")
	}
	if f.Features <= 0 {
		return errors.New("model: n_features must be positive")
	}
	if len(f.FeatureNames) > 0 && len(f.FeatureNames) != f.Features {
		return fmt.Errorf("model: %d feature names for %d features", len(f.FeatureNames), f.Features)
	}
	if len(f.Trees) == 0 {
		return errors.New("model: no trees")
	}
	for i, t := range f.Trees {
		if t == nil {
			return fmt.Errorf("model: tree %d is null", i)
		}
		if err := t.validate(f.Features, len(f.ClassLabels)); err != nil {
			return fmt.Errorf("model: tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	t.proba = make([][]float64, n)
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has a single child", i)
		}
		if l != leaf {
			// children always come after their parent, which also rules out cycles
			if l <= i || l >= n || r <= i || r >= n {
				return fmt.Errorf("node %d has out of range children", i)
			}
			if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
				return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
			}
		}
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d class weights, want %d", i, len(t.Value[i]), nClasses)
		}
		t.proba[i] = normalise(t.Value[i])
	}
	return nil
}

func normalise(w []float64) []float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	p := make([]float64, len(w))
	if sum <= 0 {
		for i := range p {
			p[i] = 1 / float64(len(p))
		}
		return p
	}
	for i, v := range w {
		p[i] = v / sum
	}
	return p
}

// leafProba walks the tree for x and returns the class distribution of the reached leaf.
func (t *Tree) leafProba(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.proba[node]
}

// PredictProba averages the leaf distributions of every tree.
func (f *Forest) PredictProba(x []float64) []float64 {
	out := make([]float64, len(f.ClassLabels))
	for _, t := range f.Trees {
		for k, p := range t.leafProba(x) {
			out[k] += p
		}
	}
	n := float64(len(f.Trees))
	for k := range out {
		out[k] /= n
	}
	return out
}

// Predict returns the class with the highest mean probability; the first class wins ties.
func (f *Forest) Predict(x []float64) int {
	return f.ClassLabels[argmax(f.PredictProba(x))]
}

// PredictRow returns the predicted class together with the probability of class label positive.
func (f *Forest) PredictRow(x []float64, positive int) (int, float64) {
	proba := f.PredictProba(x)
	label := f.ClassLabels[argmax(proba)]
	idx := f.ClassIndex(positive)
	if idx < 0 {
		return label, 0
	}
	return label, proba[idx]
}

// ClassIndex returns the column of label in PredictProba output, or -1.
func (f *Forest) ClassIndex(label int) int {
	for i, c := range f.ClassLabels {
		if c == label {
			return i
		}
	}
	return -1
}

// Classes returns a copy of the class labels.
func (f *Forest) Classes() []int { return append([]int(nil), f.ClassLabels...) }

// NumFeatures returns the expected row width.
func (f *Forest) NumFeatures() int { return f.Features }

// NumTrees returns the ensemble size.
func (f *Forest) NumTrees() int { return len(f.Trees) }

func argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}
