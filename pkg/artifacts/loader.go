// Package artifacts loads the matched classifier/encoder pair once at startup and
// exposes it as an immutable inference context shared by every request.
package artifacts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/encoding"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/model"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/scoring"
	"go.uber.org/zap"
)

// State is the lifecycle state of the loaded artifact pair.
type State string

const (
	StateReady       State = "ready"
	StateUnavailable State = "unavailable"
)

// Paths locates the artifact pair.
type Paths struct {
	Model    string
	Encoders string
}

// InferenceContext bundles the assembler and scorer built from one artifact pair.
// It never changes after construction; an Unavailable context stays so until restart.
type InferenceContext struct {
	state     State
	err       error
	forest    *model.Forest
	registry  *encoding.Registry
	assembler *features.Assembler
	scorer    *scoring.Scorer
}

// Load reads both artifacts and builds a Ready context. Any failure is logged and
// yields an Unavailable context instead of an error, so the process keeps serving
// health checks.
func Load(logger *zap.Logger, paths Paths, opts ...scoring.Option) *InferenceContext {
	ic, err := load(paths, opts...)
	if err != nil {
		logger.Warn("model artifacts unavailable, prediction endpoints will fail until restart",
			zap.String("model_path", paths.Model),
			zap.String("encoders_path", paths.Encoders),
			zap.Error(err))
		return Unavailable(err)
	}
	logger.Info("model and encoders loaded",
		zap.String("model_path", paths.Model),
		zap.String("encoders_path", paths.Encoders),
		zap.String("model_version", ic.forest.Version),
		zap.Int("trees", ic.forest.NumTrees()),
		zap.Strings("encoded_fields", ic.registry.Fields()))
	return ic
}

func load(paths Paths, opts ...scoring.Option) (*InferenceContext, error) {
	modelBytes, err := os.ReadFile(paths.Model)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	encoderBytes, err := os.ReadFile(paths.Encoders)
	if err != nil {
		return nil, fmt.Errorf("read encoders: %w", err)
	}

	forest, err := model.Load(bytes.NewReader(modelBytes))
	if err != nil {
		return nil, err
	}
	reg, err := LoadEncoders(encoderBytes)
	if err != nil {
		return nil, err
	}
	if forest.EncodersSHA256 != "" {
		sum := sha256.Sum256(encoderBytes)
		if got := hex.EncodeToString(sum[:]); got != forest.EncodersSHA256 {
			return nil, fmt.Errorf("encoders file does not belong to model %q: sha256 %s, model expects %s",
				forest.Version, got, forest.EncodersSHA256)
		}
	}
	return New(forest, reg, opts...)
}

// LoadEncoders decodes an encoder artifact: field name -> ordered training classes.
func LoadEncoders(data []byte) (*encoding.Registry, error) {
	var classes map[string][]string
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("decode encoders: %w", err)
	}
	if len(classes) == 0 {
		return nil, errors.New("decode encoders: no encoders")
	}
	return encoding.NewRegistry(classes)
}

// New builds a Ready context from an already decoded pair.
func New(forest *model.Forest, reg *encoding.Registry, opts ...scoring.Option) (*InferenceContext, error) {
	if forest == nil || reg == nil {
		return nil, errors.New("model and encoders are both required")
	}
	if len(forest.FeatureNames) > 0 && !slices.Equal(forest.FeatureNames, features.Columns()) {
		return nil, fmt.Errorf("model feature order %q does not match %q", forest.FeatureNames, features.Columns())
	}
	assembler, err := features.NewAssembler(reg)
	if err != nil {
		return nil, err
	}
	scorer, err := scoring.New(forest, opts...)
	if err != nil {
		return nil, err
	}
	return &InferenceContext{
		state:     StateReady,
		forest:    forest,
		registry:  reg,
		assembler: assembler,
		scorer:    scorer,
	}, nil
}

// Unavailable returns a context that rejects every prediction with cause.
func Unavailable(cause error) *InferenceContext {
	if cause == nil {
		cause = errors.New("model artifacts not loaded")
	}
	return &InferenceContext{state: StateUnavailable, err: cause}
}

// State returns the lifecycle state.
func (ic *InferenceContext) State() State { return ic.state }

// Ready reports whether predictions can be served.
func (ic *InferenceContext) Ready() bool { return ic.state == StateReady }

// Err returns why the context is Unavailable, or nil.
func (ic *InferenceContext) Err() error { return ic.err }

// Assembler returns the feature assembler; nil when Unavailable.
func (ic *InferenceContext) Assembler() *features.Assembler { return ic.assembler }

// Scorer returns the fraud scorer; nil when Unavailable.
func (ic *InferenceContext) Scorer() *scoring.Scorer { return ic.scorer }

// Registry returns the encoder registry; nil when Unavailable.
func (ic *InferenceContext) Registry() *encoding.Registry { return ic.registry }

// Forest returns the loaded classifier; nil when Unavailable.
func (ic *InferenceContext) Forest() *model.Forest { return ic.forest }

// ModelVersion returns the classifier version, or "" when Unavailable.
func (ic *InferenceContext) ModelVersion() string {
	if ic.forest == nil {
		return ""
	}
	return ic.forest.Version
}
