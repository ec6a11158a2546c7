package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shardflow/shardflow/engine/simulate"
)

// loadCalib resolves the device calibration: the built-in table by default,
// overridden per device type by an optional YAML file of the form
//
//	h100:
//	  tflops_eff: 989.5
//	  bw_eff_tbs: 2.4
//	  ...
func loadCalib(path, device string) (simulate.DeviceCalib, error) {
	if path == "" {
		calib, ok := simulate.CalibFor(device)
		if !ok {
			return simulate.DeviceCalib{}, fmt.Errorf("unknown device type %q", device)
		}
		return calib, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return simulate.DeviceCalib{}, fmt.Errorf("read calibration file: %w", err)
	}
	table := map[string]simulate.DeviceCalib{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return simulate.DeviceCalib{}, fmt.Errorf("parse calibration file: %w", err)
	}
	calib, ok := table[device]
	if !ok {
		return simulate.DeviceCalib{}, fmt.Errorf("device type %q not in %s", device, path)
	}
	return calib, nil
}
