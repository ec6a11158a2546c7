package runtime

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Buffer is an opaque device buffer handle. A buffer is exclusively owned by
// the operator instance and partition it was allocated for; it is never
// aliased across partitions. The executor uses buffer identity as the region
// granularity for dependency inference.
type Buffer struct {
	ID     uuid.UUID
	Device int
	Bytes  int64
}

func (b *Buffer) String() string {
	return fmt.Sprintf("buf(%s, dev=%d, %dB)", b.ID.String()[:8], b.Device, b.Bytes)
}

// MemoryPool tracks device memory usage per device. Allocation either
// succeeds fully or fails with no state change; there is no partial
// allocation.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type MemoryPool struct {
	capacity int64 // per-device capacity in bytes; <= 0 means unbounded
	used     map[int]int64
	peak     map[int]int64
}

// NewMemoryPool creates a pool with the given per-device capacity in bytes.
// A non-positive capacity disables the limit.
func NewMemoryPool(capacityPerDevice int64) *MemoryPool {
	return &MemoryPool{
		capacity: capacityPerDevice,
		used:     make(map[int]int64),
		peak:     make(map[int]int64),
	}
}

// Allocate reserves bytes on the given device and returns a fresh buffer
// handle. It fails when the device's capacity would be exceeded.
func (p *MemoryPool) Allocate(device int, bytes int64) (*Buffer, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("allocate: non-positive size %d", bytes)
	}
	if p.capacity > 0 && p.used[device]+bytes > p.capacity {
		return nil, fmt.Errorf("allocate: device %d over capacity: used %d + %d > %d",
			device, p.used[device], bytes, p.capacity)
	}
	p.used[device] += bytes
	if p.used[device] > p.peak[device] {
		p.peak[device] = p.used[device]
	}
	buf := &Buffer{ID: uuid.New(), Device: device, Bytes: bytes}
	logrus.Debugf("alloc %s (device %d used=%dB)", buf, device, p.used[device])
	return buf, nil
}

// Release returns a buffer's bytes to its device.
func (p *MemoryPool) Release(buf *Buffer) {
	if buf == nil {
		return
	}
	p.used[buf.Device] -= buf.Bytes
	logrus.Debugf("release %s (device %d used=%dB)", buf, buf.Device, p.used[buf.Device])
}

// Used returns the bytes currently allocated on a device.
func (p *MemoryPool) Used(device int) int64 { return p.used[device] }

// Peak returns the high-water mark of a device.
func (p *MemoryPool) Peak(device int) int64 { return p.peak[device] }

// PeakTotal returns the sum of per-device high-water marks.
func (p *MemoryPool) PeakTotal() int64 {
	var total int64
	for _, v := range p.peak {
		total += v
	}
	return total
}
