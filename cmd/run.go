package cmd

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloudsim/cloudsim/sim"
)

var (
	topologyPath   string
	outDir         string
	till           float64
	monitorInterval float64
	metricsAddr    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation described by a topology YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := sim.LoadTopologyBundle(topologyPath)
		if err != nil {
			return err
		}

		s, err := bundle.Build(0)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		var reg *prometheus.Registry
		if metricsAddr != "" {
			reg = prometheus.NewRegistry()
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(metricsAddr, mux); err != nil {
					logrus.WithError(err).Warn("cloudsim: metrics server stopped")
				}
			}()
			logrus.Infof("Serving live Prometheus gauges on %s/metrics", metricsAddr)
		}

		urRec, wfRec, reqRec, err := s.StartMonitors(0, outDir, monitorInterval, reg)
		if err != nil {
			return err
		}
		s.AttachRecorders(urRec, wfRec, reqRec)

		for _, u := range s.Users() {
			u.StartRecurring(0)
		}

		logrus.Infof("Starting simulation from %s, horizon=%.2fs", topologyPath, till)
		finalTime := s.Simulate(till)
		logrus.Infof("Simulation complete at t=%.4fs, CSV telemetry written to %s", finalTime, outDir)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&topologyPath, "topology", "", "Path to the topology YAML file (required)")
	runCmd.Flags().StringVar(&outDir, "out", "./out", "Directory to write CSV telemetry into")
	runCmd.Flags().Float64Var(&till, "till", 3600, "Simulation horizon in seconds")
	runCmd.Flags().Float64Var(&monitorInterval, "monitor-interval", 10, "Telemetry sampling interval in seconds")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "If set, serve live Prometheus gauges on this address (e.g. :9090)")
	runCmd.MarkFlagRequired("topology")
}
