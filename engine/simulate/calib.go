package simulate

// DeviceCalib holds per-device-type calibration for analytical kernel
// timing: effective compute throughput, effective memory bandwidth, fixed
// per-task overhead, and utilization factors. Values are loadable from YAML
// so deployments can swap in measured numbers.
type DeviceCalib struct {
	TFlopsEff       float64 `yaml:"tflops_eff"`        // Tera (10^12) FLOP/s
	BwEffTBs        float64 `yaml:"bw_eff_tbs"`        // effective bandwidth in TB/s
	OverheadMicros  float64 `yaml:"overhead_micros"`   // per-task launch overhead
	MFUForward      float64 `yaml:"mfu_forward"`       // achieved fraction of peak, forward kernels
	MFUBackward     float64 `yaml:"mfu_backward"`      // achieved fraction of peak, backward kernels
	AllReduceMicros float64 `yaml:"all_reduce_micros"` // per-partition gradient sync latency
}

// DeviceList is the built-in calibration table, keyed by device type.
var DeviceList = map[string]DeviceCalib{
	"h100": {
		TFlopsEff:       989.5,
		BwEffTBs:        3.35 * 0.72,
		OverheadMicros:  5.0,
		MFUForward:      0.65,
		MFUBackward:     0.45,
		AllReduceMicros: 20.0,
	},
	"a100-80": {
		TFlopsEff:       312,
		BwEffTBs:        2.039 * 0.72,
		OverheadMicros:  5.0,
		MFUForward:      0.65,
		MFUBackward:     0.45,
		AllReduceMicros: 20.0,
	},
	"cpu": {
		TFlopsEff:       1.5,
		BwEffTBs:        0.08,
		OverheadMicros:  1.0,
		MFUForward:      0.5,
		MFUBackward:     0.4,
		AllReduceMicros: 50.0,
	},
}

// CalibFor looks up the built-in calibration for a device type.
func CalibFor(device string) (DeviceCalib, bool) {
	calib, ok := DeviceList[device]
	return calib, ok
}
