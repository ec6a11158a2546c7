package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shardflow/shardflow/engine/parallel"
	"github.com/shardflow/shardflow/engine/simulate"
)

// candidateCost is one scored parallelization candidate for the whole graph.
type candidateCost struct {
	Degree      int
	ForwardUs   float64
	BackwardUs  float64
	SyncUs      float64
	MemoryBytes int64
}

// estimateCmd scores data-parallel candidates for the reference graph on the
// simulator and prints them ranked by total step time. Candidates that any
// operator rejects are discarded and reported, the way a parallelization
// search would skip them.
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Rank data-parallel candidates by simulated step cost",
	Run: func(cmd *cobra.Command, args []string) {
		calib, err := loadCalib(calibFile, deviceType)
		if err != nil {
			logrus.Fatalf("calibration: %v", err)
		}
		graph, err := buildReferenceGraph(batchSize)
		if err != nil {
			logrus.Fatalf("reference graph: %v", err)
		}
		sim := simulate.New(calib, seed)

		var ranked []candidateCost
		for degree := 1; degree <= numDevices; degree++ {
			devices := make([]int, degree)
			for i := range devices {
				devices[i] = i
			}

			var total candidateCost
			total.Degree = degree
			usable := true
			for _, op := range graph.Operators {
				cfg, err := parallel.DataParallel(len(op.Output().Shape), devices)
				if err != nil {
					logrus.Fatalf("candidate degree %d: %v", degree, err)
				}
				metrics, err := op.MeasureCost(sim, cfg)
				var mErr *simulate.MeasurementError
				if errors.As(err, &mErr) {
					logrus.Warnf("degree %d discarded: %s rejects it: %v", degree, op.Name(), err)
					usable = false
					break
				}
				if err != nil {
					logrus.Fatalf("measuring %s: %v", op.Name(), err)
				}
				total.ForwardUs += metrics.ForwardTime
				total.BackwardUs += metrics.BackwardTime
				total.SyncUs += metrics.SyncTime
				total.MemoryBytes += metrics.MemoryBytes
			}
			if usable {
				ranked = append(ranked, total)
			}
		}
		if len(ranked) == 0 {
			logrus.Fatalf("no usable candidate up to degree %d", numDevices)
		}

		sort.Slice(ranked, func(i, j int) bool {
			ti := ranked[i].ForwardUs + ranked[i].BackwardUs + ranked[i].SyncUs
			tj := ranked[j].ForwardUs + ranked[j].BackwardUs + ranked[j].SyncUs
			return ti < tj
		})

		fmt.Printf("%-8s %12s %12s %12s %12s\n", "degree", "fwd(us)", "bwd(us)", "sync(us)", "mem(bytes)")
		for _, c := range ranked {
			fmt.Printf("%-8d %12.2f %12.2f %12.2f %12d\n",
				c.Degree, c.ForwardUs, c.BackwardUs, c.SyncUs, c.MemoryBytes)
		}
		best := ranked[0]
		logrus.Infof("best candidate: degree %d (%.2fus per step)",
			best.Degree, best.ForwardUs+best.BackwardUs+best.SyncUs)
	},
}
