// Package encoding holds the training-time categorical encoders used at serving time.
package encoding

import (
	"fmt"
	"sort"
)

// FallbackCode is returned for labels that were not seen during training.
//
// It is also the code of the first training class of every field, so an unseen
// value is scored as if it were that class. Known accuracy risk, kept for
// compatibility with models trained against this encoding.
const FallbackCode = 0

// Encoder maps the labels of one categorical field to their training-time codes.
type Encoder struct {
	classes []string
	codes   map[string]int
}

// NewEncoder builds an encoder from the ordered training classes; a label's code is its index.
func NewEncoder(classes []string) (*Encoder, error) {
	codes := make(map[string]int, len(classes))
	for i, label := range classes {
		if _, dup := codes[label]; dup {
			return nil, fmt.Errorf("duplicate class %q", label)
		}
		codes[label] = i
	}
	return &Encoder{
		classes: append([]string(nil), classes...),
		codes:   codes,
	}, nil
}

// Lookup returns the code of label and whether it was seen during training.
func (e *Encoder) Lookup(label string) (int, bool) {
	code, ok := e.codes[label]
	return code, ok
}

// Encode returns the code of label, or FallbackCode when it is unseen.
func (e *Encoder) Encode(label string) int {
	if code, ok := e.codes[label]; ok {
		return code
	}
	return FallbackCode
}

// Classes returns a copy of the ordered training classes.
func (e *Encoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Len returns the number of training classes.
func (e *Encoder) Len() int { return len(e.classes) }

// Registry holds one Encoder per categorical field. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	encoders map[string]*Encoder
}

// NewRegistry builds a registry from field name -> ordered training classes.
func NewRegistry(classes map[string][]string) (*Registry, error) {
	encoders := make(map[string]*Encoder, len(classes))
	for field, cls := range classes {
		enc, err := NewEncoder(cls)
		if err != nil {
			return nil, fmt.Errorf("encoder %q: %w", field, err)
		}
		encoders[field] = enc
	}
	return &Registry{encoders: encoders}, nil
}

// Has reports whether the registry holds an encoder for field.
func (r *Registry) Has(field string) bool {
	_, ok := r.encoders[field]
	return ok
}

// Encoder returns the encoder of field.
func (r *Registry) Encoder(field string) (*Encoder, bool) {
	enc, ok := r.encoders[field]
	return enc, ok
}

// Lookup returns the training-time code of raw in field and whether it is known.
// An unknown field reports false.
func (r *Registry) Lookup(field, raw string) (int, bool) {
	enc, ok := r.encoders[field]
	if !ok {
		return FallbackCode, false
	}
	return enc.Lookup(raw)
}

// Encode is total: known labels get their training code, everything else FallbackCode.
func (r *Registry) Encode(field, raw string) int {
	code, _ := r.Lookup(field, raw)
	return code
}

// Classes returns the training classes of field, or nil for an unknown field.
func (r *Registry) Classes(field string) []string {
	enc, ok := r.encoders[field]
	if !ok {
		return nil
	}
	return enc.Classes()
}

// Fields returns the registered field names, sorted.
func (r *Registry) Fields() []string {
	fields := make([]string, 0, len(r.encoders))
	for f := range r.encoders {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
