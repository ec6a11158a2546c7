package params

import "fmt"

// OpKind identifies one operator kind in the catalog.
type OpKind int

const (
	KindConv2D OpKind = iota
	KindLinear
	KindConcat
	KindElementBinary
	KindReshape
	KindPool2D
	KindSoftmax
)

func (k OpKind) String() string {
	switch k {
	case KindConv2D:
		return "conv2d"
	case KindLinear:
		return "linear"
	case KindConcat:
		return "concat"
	case KindElementBinary:
		return "element_binary"
	case KindReshape:
		return "reshape"
	case KindPool2D:
		return "pool2d"
	case KindSoftmax:
		return "softmax"
	}
	return fmt.Sprintf("opkind(%d)", int(k))
}

// AllKinds enumerates the full operator catalog. The catalog is a closed set:
// every consumer switches exhaustively over these kinds, and the catalog test
// constructs one record per kind so a new kind cannot land without updating
// every switch.
func AllKinds() []OpKind {
	return []OpKind{
		KindConv2D,
		KindLinear,
		KindConcat,
		KindElementBinary,
		KindReshape,
		KindPool2D,
		KindSoftmax,
	}
}

// OperatorParams is the closed variant over per-kind parameter records.
// Each record is an immutable comparable value: pure shape/attribute
// configuration with no tensors, no device state, no side effects.
//
// OutputShape and IsValid are pure functions of the input shapes. A record
// fully determines the operator's output shape given its inputs, so
// (Fingerprint, input shapes) is a safe cache key for derived results.
type OperatorParams interface {
	// Kind returns the catalog tag of this record.
	Kind() OpKind

	// OutputShape computes the operator's output shape for the given input
	// shapes. It returns a *ConfigurationError and no partial shape when the
	// inputs are incompatible with the configured attributes.
	OutputShape(inputs []Shape) (Shape, error)

	// IsValid reports whether the input shapes are compatible with this
	// record. Equivalent to OutputShape succeeding.
	IsValid(inputs []Shape) bool

	// Fingerprint returns a stable string encoding of the record, usable as
	// part of a measurement cache key.
	Fingerprint() string

	// sealed keeps the variant set closed to this package.
	sealed()
}

// ConfigurationError reports an invalid parameter/shape combination. It is
// fatal for the operator that produced it: the caller must fix the graph or
// the configuration, never retry.
type ConfigurationError struct {
	Kind   OpKind
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid configuration: %s", e.Kind, e.Reason)
}

func configErrf(kind OpKind, format string, args ...any) error {
	return &ConfigurationError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// validOrErr reports IsValid in terms of OutputShape so the two can never
// disagree.
func validOrErr(p OperatorParams, inputs []Shape) bool {
	_, err := p.OutputShape(inputs)
	return err == nil
}
