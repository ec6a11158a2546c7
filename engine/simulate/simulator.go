package simulate

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/shardflow/shardflow/engine/parallel"
	"github.com/shardflow/shardflow/engine/params"
)

const (
	defaultWarmupIters = 2
	defaultTimedIters  = 5
	// defaultNoise bounds the multiplicative timing jitter per replay.
	defaultNoise = 0.02
)

// MeasureSpec names one measurement: an operator's parameter record and
// input shapes, the element type, and the candidate parallelization to
// score. It carries no operator runtime state, so measuring never touches
// real training.
type MeasureSpec struct {
	Params params.OperatorParams
	Inputs []params.Shape
	DType  params.DataType
	Config parallel.Config
}

func (m MeasureSpec) key() string {
	shapes := make([]string, len(m.Inputs))
	for i, s := range m.Inputs {
		shapes[i] = s.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s", m.Params.Fingerprint(), strings.Join(shapes, ";"), m.DType, m.Config.Fingerprint())
}

// Simulator estimates the execution cost of an operator under a candidate
// parallelization by replaying its kernel profile against a device
// calibration, without performing the real distributed computation.
//
// Measurement semantics: each call replays the kernel warmup+timed times
// with bounded timing jitter, discards the warmup replays (2 by default, to
// discount first-call overhead), and reports the mean of the timed replays
// (5 by default). Results are cached by (params, input shapes, dtype,
// config), so repeated calls with the same arguments are identical; two
// simulators built with the same seed also agree exactly.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type Simulator struct {
	calib  DeviceCalib
	seed   int64
	warmup int
	timed  int
	noise  float64
	cache  map[string]CostMetrics
}

// New creates a Simulator for one device calibration. The seed fixes the
// timing-jitter stream.
func New(calib DeviceCalib, seed int64) *Simulator {
	return &Simulator{
		calib:  calib,
		seed:   seed,
		warmup: defaultWarmupIters,
		timed:  defaultTimedIters,
		noise:  defaultNoise,
		cache:  make(map[string]CostMetrics),
	}
}

// Measure scores one (operator, config) candidate. Structurally unusable
// candidates fail with a *MeasurementError the search loop can discard;
// nothing is cached for them.
func (s *Simulator) Measure(spec MeasureSpec) (CostMetrics, error) {
	if spec.Params == nil {
		return CostMetrics{}, measureErrf("nil operator params")
	}
	key := spec.key()
	if cached, ok := s.cache[key]; ok {
		logrus.Debugf("measure cache hit: %s", key)
		return cached, nil
	}

	outShape, err := spec.Params.OutputShape(spec.Inputs)
	if err != nil {
		return CostMetrics{}, measureErrf("invalid operator: %v", err)
	}
	if !spec.Config.Divides(outShape) {
		logrus.Warnf("candidate %s does not divide output %s for %s",
			spec.Config.Fingerprint(), outShape, spec.Params.Fingerprint())
		return CostMetrics{}, measureErrf("config %s does not evenly divide output shape %s",
			spec.Config.Fingerprint(), outShape)
	}

	parts := spec.Config.NumPartitions()
	partOut := spec.Config.PartitionShape(outShape)
	prof, err := profileFor(spec.Params, spec.Inputs, partOut, parts, spec.DType)
	if err != nil {
		return CostMetrics{}, err
	}

	rng := measurementRNG(s.seed, key)
	fwd := s.replay(prof.FwdFlops, prof.FwdBytes, s.calib.MFUForward, rng)
	bwd := s.replay(prof.BwdFlops, prof.BwdBytes, s.calib.MFUBackward, rng)

	var sync float64
	if parts > 1 {
		sync = s.calib.AllReduceMicros * float64(parts)
	}

	perPartition := int64(partOut.Volume())*spec.DType.SizeBytes() + prof.WorkspaceBytes
	metrics := CostMetrics{
		ForwardTime:  fwd,
		BackwardTime: bwd,
		SyncTime:     sync,
		MemoryBytes:  int64(parts) * perPartition,
	}
	s.cache[key] = metrics
	logrus.Debugf("measured %s -> %s", key, metrics)
	return metrics, nil
}

// replay runs the warmup-then-time loop for one kernel phase and returns
// the mean timed duration in microseconds.
func (s *Simulator) replay(flops, bytes, mfu float64, rng *rand.Rand) float64 {
	base := s.kernelMicros(flops, bytes, mfu)
	samples := make([]float64, 0, s.timed)
	for i := 0; i < s.warmup+s.timed; i++ {
		t := base * (1 + s.noise*(2*rng.Float64()-1))
		if i < s.warmup {
			continue
		}
		samples = append(samples, t)
	}
	return stat.Mean(samples, nil)
}

// kernelMicros is the roofline estimate for one kernel: the slower of the
// compute time and the memory traffic time, plus launch overhead.
func (s *Simulator) kernelMicros(flops, bytes, mfu float64) float64 {
	computeSec := 0.0
	if flops > 0 && s.calib.TFlopsEff > 0 && mfu > 0 {
		computeSec = flops / (s.calib.TFlopsEff * 1e12 * mfu)
	}
	memSec := 0.0
	if bytes > 0 && s.calib.BwEffTBs > 0 {
		memSec = bytes / (s.calib.BwEffTBs * 1e12)
	}
	sec := computeSec
	if memSec > sec {
		sec = memSec
	}
	return sec*1e6 + s.calib.OverheadMicros
}
