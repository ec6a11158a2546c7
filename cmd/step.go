package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shardflow/shardflow/engine/parallel"
	"github.com/shardflow/shardflow/engine/runtime"
)

// stepCmd runs one initialize + forward + backward step of the reference
// graph on the deterministic in-process executor.
var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Run one training step of the reference graph in-process",
	Run: func(cmd *cobra.Command, args []string) {
		graph, err := buildReferenceGraph(batchSize)
		if err != nil {
			logrus.Fatalf("reference graph: %v", err)
		}

		pool := runtime.NewMemoryPool(capacityMB * 1024 * 1024)
		ctx := runtime.NewContext(runtime.NewLocalExecutor(), pool)

		devices := make([]int, numDevices)
		for i := range devices {
			devices[i] = i
		}

		for _, src := range graph.Sources {
			cfg, err := parallel.DataParallel(len(src.Shape), devices)
			if err != nil {
				logrus.Fatalf("source %s: %v", src.Name, err)
			}
			if err := src.Materialize(ctx, cfg); err != nil {
				logrus.Fatalf("source %s: %v", src.Name, err)
			}
		}
		for _, op := range graph.Operators {
			cfg, err := parallel.DataParallel(len(op.Output().Shape), devices)
			if err != nil {
				logrus.Fatalf("operator %s: %v", op.Name(), err)
			}
			if err := op.Initialize(ctx, cfg); err != nil {
				logrus.Fatalf("initialize %s: %v", op.Name(), err)
			}
		}

		start := time.Now()
		for _, op := range graph.Operators {
			if err := op.Forward(ctx); err != nil {
				logrus.Fatalf("forward %s: %v", op.Name(), err)
			}
		}
		for i := len(graph.Operators) - 1; i >= 0; i-- {
			if err := graph.Operators[i].Backward(ctx); err != nil {
				logrus.Fatalf("backward %s: %v", graph.Operators[i].Name(), err)
			}
		}
		if err := ctx.Exec.Sync(); err != nil {
			logrus.Fatalf("step failed: %v", err)
		}

		logrus.Infof("step complete in %s across %d devices", time.Since(start), numDevices)
		for _, d := range devices {
			logrus.Infof("device %d: peak memory %dB", d, pool.Peak(d))
		}
		logrus.Infof("total peak memory: %dB", pool.PeakTotal())
	},
}
