package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRecord returns one valid record for the given kind, together with a
// set of input shapes it accepts. Extending the catalog without extending
// this switch fails the enumeration test below.
func sampleRecord(t *testing.T, kind OpKind) (OperatorParams, []Shape) {
	t.Helper()
	switch kind {
	case KindConv2D:
		return Conv2DParams{OutChannels: 8, KernelH: 3, KernelW: 3, StrideH: 1, StrideW: 1, Groups: 1},
			[]Shape{{2, 4, 8, 8}}
	case KindLinear:
		return LinearParams{OutFeatures: 16}, []Shape{{4, 8}}
	case KindConcat:
		return ConcatParams{Axis: 1, NumInputs: 2}, []Shape{{4, 8}, {4, 8}}
	case KindElementBinary:
		return ElementBinaryParams{Op: EBAdd}, []Shape{{4, 8}, {4, 8}}
	case KindReshape:
		p, err := NewReshapeParams(Shape{128})
		require.NoError(t, err)
		return p, []Shape{{8, 16}}
	case KindPool2D:
		return Pool2DParams{Pool: PoolMax, KernelH: 2, KernelW: 2, StrideH: 2, StrideW: 2},
			[]Shape{{2, 4, 8, 8}}
	case KindSoftmax:
		return SoftmaxParams{Axis: 1}, []Shape{{4, 8}}
	}
	t.Fatalf("sampleRecord: no sample for kind %s; extend the switch", kind)
	return nil, nil
}

// TestCatalog_Exhaustive verifies every kind in the closed catalog has a
// record type whose Kind tag matches, a stable fingerprint, and a valid
// sample configuration.
func TestCatalog_Exhaustive(t *testing.T) {
	seen := map[OpKind]bool{}
	for _, kind := range AllKinds() {
		rec, inputs := sampleRecord(t, kind)

		assert.Equal(t, kind, rec.Kind())
		assert.True(t, rec.IsValid(inputs), "sample inputs for %s should be valid", kind)
		assert.NotEmpty(t, rec.Fingerprint())
		assert.False(t, seen[kind], "duplicate kind %s", kind)
		seen[kind] = true
	}
	assert.Len(t, seen, len(AllKinds()))
}

// TestCatalog_RecordsAreMapKeys verifies records are comparable values usable
// directly as cache keys.
func TestCatalog_RecordsAreMapKeys(t *testing.T) {
	cache := map[OperatorParams]int{}
	for _, kind := range AllKinds() {
		rec, _ := sampleRecord(t, kind)
		cache[rec] = int(kind)
	}
	for _, kind := range AllKinds() {
		rec, _ := sampleRecord(t, kind)
		assert.Equal(t, int(kind), cache[rec], "re-built record for %s should hit the same key", kind)
	}
}

// TestConv2D_OutputShape verifies the convolution size formula
// out = (in + 2*pad - kernel)/stride + 1 on both spatial axes.
func TestConv2D_OutputShape(t *testing.T) {
	p := Conv2DParams{OutChannels: 6, KernelH: 5, KernelW: 5, StrideH: 1, StrideW: 1, Groups: 1}

	out, err := p.OutputShape([]Shape{{32, 1, 28, 28}})

	require.NoError(t, err)
	assert.Equal(t, Shape{32, 6, 24, 24}, out)
}

func TestConv2D_Invalid(t *testing.T) {
	p := Conv2DParams{OutChannels: 6, KernelH: 5, KernelW: 5, StrideH: 1, StrideW: 1, Groups: 1}

	// GIVEN a 3D input where a 4D [N,C,H,W] input is required
	_, err := p.OutputShape([]Shape{{1, 28, 28}})

	// THEN a ConfigurationError is reported and IsValid agrees
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, KindConv2D, cfgErr.Kind)
	assert.False(t, p.IsValid([]Shape{{1, 28, 28}}))

	// AND a kernel larger than the padded input is rejected
	assert.False(t, p.IsValid([]Shape{{1, 1, 3, 3}}))

	// AND channel counts not divisible by groups are rejected
	grouped := Conv2DParams{OutChannels: 6, KernelH: 3, KernelW: 3, StrideH: 1, StrideW: 1, Groups: 4}
	assert.False(t, grouped.IsValid([]Shape{{1, 6, 8, 8}}))
}

func TestLinear_OutputShape(t *testing.T) {
	p := LinearParams{OutFeatures: 10}

	out, err := p.OutputShape([]Shape{{32, 784}})

	require.NoError(t, err)
	assert.Equal(t, Shape{32, 10}, out)

	// Leading axes are preserved for higher-rank inputs.
	out, err = p.OutputShape([]Shape{{4, 16, 784}})
	require.NoError(t, err)
	assert.Equal(t, Shape{4, 16, 10}, out)
}

// TestConcat_OutputShape covers the concrete concat scenarios:
// [4,8] + [4,8] along axis 1 yields [4,16]; [4,8] + [5,8] fails.
func TestConcat_OutputShape(t *testing.T) {
	p := ConcatParams{Axis: 1, NumInputs: 2}

	out, err := p.OutputShape([]Shape{{4, 8}, {4, 8}})
	require.NoError(t, err)
	assert.Equal(t, Shape{4, 16}, out)

	assert.False(t, p.IsValid([]Shape{{4, 8}, {5, 8}}),
		"mismatched non-concat axis must fail")
	assert.False(t, ConcatParams{Axis: 2, NumInputs: 2}.IsValid([]Shape{{4, 8}, {4, 8}}),
		"axis out of range must fail")
	assert.False(t, p.IsValid([]Shape{{4, 8}}),
		"missing input must fail")
}

// TestElementBinary_OutputShape covers the concrete elementwise scenarios:
// add of [4,8] and [4,9] fails; add of [4,8] and [4,8] yields [4,8].
func TestElementBinary_OutputShape(t *testing.T) {
	p := ElementBinaryParams{Op: EBAdd}

	out, err := p.OutputShape([]Shape{{4, 8}, {4, 8}})
	require.NoError(t, err)
	assert.Equal(t, Shape{4, 8}, out)

	assert.False(t, p.IsValid([]Shape{{4, 8}, {4, 9}}))
}

// TestReshape_OutputShape covers the concrete reshape scenario:
// [8,16] -> [128] is valid and preserves the element count.
func TestReshape_OutputShape(t *testing.T) {
	p, err := NewReshapeParams(Shape{128})
	require.NoError(t, err)

	out, err := p.OutputShape([]Shape{{8, 16}})
	require.NoError(t, err)
	assert.Equal(t, Shape{128}, out)
	assert.Equal(t, 128, out.Volume())

	// Element count mismatch fails with no partial output.
	bad, err := p.OutputShape([]Shape{{8, 17}})
	assert.Error(t, err)
	assert.Nil(t, bad)
}

func TestReshape_RejectsMalformedTarget(t *testing.T) {
	_, err := NewReshapeParams(Shape{0, 4})
	assert.Error(t, err)

	_, err = NewReshapeParams(Shape{2, 2, 2, 2, 2})
	assert.Error(t, err, "rank above MaxDims must fail")
}

func TestPool2D_OutputShape(t *testing.T) {
	p := Pool2DParams{Pool: PoolMax, KernelH: 2, KernelW: 2, StrideH: 2, StrideW: 2}

	out, err := p.OutputShape([]Shape{{8, 16, 24, 24}})

	require.NoError(t, err)
	assert.Equal(t, Shape{8, 16, 12, 12}, out)
}

func TestSoftmax_OutputShape(t *testing.T) {
	p := SoftmaxParams{Axis: 1}

	out, err := p.OutputShape([]Shape{{4, 10}})
	require.NoError(t, err)
	assert.Equal(t, Shape{4, 10}, out)

	assert.False(t, SoftmaxParams{Axis: 3}.IsValid([]Shape{{4, 10}}))
}

// TestOutputShape_NoPartialResult verifies the invalid branches return a nil
// shape, never a partially built one.
func TestOutputShape_NoPartialResult(t *testing.T) {
	for _, kind := range AllKinds() {
		rec, _ := sampleRecord(t, kind)

		// Rank-0 input is invalid for every kind in the catalog.
		out, err := rec.OutputShape([]Shape{{}})

		assert.Error(t, err, "kind %s", kind)
		assert.Nil(t, out, "kind %s", kind)
		assert.True(t, errors.As(err, new(*ConfigurationError)), "kind %s", kind)
	}
}
