// Package parallel describes how one operator's work and data are
// partitioned across execution devices. A Config is a comparable value: the
// engine treats it as an opaque candidate supplied by an external
// parallelization search, compares it for equality, and uses it as part of
// measurement cache keys.
package parallel

import (
	"fmt"
	"strings"

	"github.com/shardflow/shardflow/engine/params"
)

// MaxDevices bounds the number of devices one operator can be partitioned
// over. Devices are stored inline so Config stays comparable.
const MaxDevices = 64

// Config describes a dimension-wise partitioning of one operator's output
// tensor and the device each resulting partition is assigned to.
//
// Degree[i] is the parallelism along output axis i; the partition count is
// the product of the degrees. Partition p runs on Devices[p].
type Config struct {
	NumDims int
	Degree  [params.MaxDims]int
	Devices [MaxDevices]int
}

// New builds a Config from per-dimension degrees and a device assignment.
// The device list length must equal the product of the degrees.
func New(degrees []int, devices []int) (Config, error) {
	if len(degrees) == 0 || len(degrees) > params.MaxDims {
		return Config{}, fmt.Errorf("parallel: degree rank %d out of range", len(degrees))
	}
	parts := 1
	for _, d := range degrees {
		if d <= 0 {
			return Config{}, fmt.Errorf("parallel: non-positive degree %d", d)
		}
		parts *= d
	}
	if parts > MaxDevices {
		return Config{}, fmt.Errorf("parallel: %d partitions exceed MaxDevices %d", parts, MaxDevices)
	}
	if len(devices) != parts {
		return Config{}, fmt.Errorf("parallel: %d devices for %d partitions", len(devices), parts)
	}
	cfg := Config{NumDims: len(degrees)}
	copy(cfg.Degree[:], degrees)
	copy(cfg.Devices[:], devices)
	return cfg, nil
}

// DataParallel builds a Config that partitions only the outermost axis of a
// rank-dim tensor, one partition per device.
func DataParallel(rank int, devices []int) (Config, error) {
	degrees := make([]int, rank)
	degrees[0] = len(devices)
	for i := 1; i < rank; i++ {
		degrees[i] = 1
	}
	return New(degrees, devices)
}

// NumPartitions returns the total partition count.
func (c Config) NumPartitions() int {
	parts := 1
	for i := 0; i < c.NumDims; i++ {
		parts *= c.Degree[i]
	}
	return parts
}

// DeviceFor returns the device assigned to partition p.
func (c Config) DeviceFor(p int) int {
	return c.Devices[p]
}

// Divides reports whether the config evenly partitions the given shape:
// same rank, and every degree divides its dimension.
func (c Config) Divides(shape params.Shape) bool {
	if len(shape) != c.NumDims {
		return false
	}
	for i, d := range shape {
		if c.Degree[i] <= 0 || d%c.Degree[i] != 0 {
			return false
		}
	}
	return true
}

// PartitionShape returns the per-partition shape of the given full shape.
// Precondition: Divides(shape).
func (c Config) PartitionShape(shape params.Shape) params.Shape {
	out := shape.Clone()
	for i := range out {
		out[i] /= c.Degree[i]
	}
	return out
}

// Fingerprint returns a stable string encoding usable in cache keys.
func (c Config) Fingerprint() string {
	var sb strings.Builder
	sb.WriteString("pc(deg=")
	for i := 0; i < c.NumDims; i++ {
		if i > 0 {
			sb.WriteByte('x')
		}
		fmt.Fprintf(&sb, "%d", c.Degree[i])
	}
	sb.WriteString(",dev=")
	for p := 0; p < c.NumPartitions(); p++ {
		if p > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", c.Devices[p])
	}
	sb.WriteByte(')')
	return sb.String()
}
