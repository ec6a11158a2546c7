package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardflow/shardflow/engine/params"
)

func TestNew_Validation(t *testing.T) {
	// Degree product must match the device list length.
	_, err := New([]int{2, 2}, []int{0, 1})
	assert.Error(t, err)

	_, err = New([]int{2, 0}, []int{0, 1})
	assert.Error(t, err, "zero degree must fail")

	cfg, err := New([]int{2, 2}, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NumPartitions())
	assert.Equal(t, 3, cfg.DeviceFor(3))
}

func TestDataParallel(t *testing.T) {
	cfg, err := DataParallel(2, []int{0, 1})
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.NumPartitions())
	assert.True(t, cfg.Divides(params.Shape{8, 16}))
	assert.Equal(t, params.Shape{4, 16}, cfg.PartitionShape(params.Shape{8, 16}))
}

func TestDivides(t *testing.T) {
	cfg, err := New([]int{2, 4}, []int{0, 1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)

	assert.True(t, cfg.Divides(params.Shape{8, 16}))
	assert.False(t, cfg.Divides(params.Shape{9, 16}), "indivisible dim must fail")
	assert.False(t, cfg.Divides(params.Shape{8, 16, 2}), "rank mismatch must fail")
}

func TestConfig_IsComparableKey(t *testing.T) {
	a, err := DataParallel(2, []int{0, 1})
	require.NoError(t, err)
	b, err := DataParallel(2, []int{0, 1})
	require.NoError(t, err)

	// GIVEN two configs built from identical arguments
	// THEN they compare equal and collide in a map
	assert.Equal(t, a, b)
	m := map[Config]bool{a: true}
	assert.True(t, m[b])

	c, err := DataParallel(2, []int{0, 2})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
