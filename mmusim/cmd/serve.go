package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/spf13/cobra"
)

var openBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo MMU over HTTP.",
	Long: `serve builds the demo page table behind the monitoring server, ` +
		`runs the demo reads while reporting their progress, and keeps ` +
		`serving until interrupted. Further reads can be issued from the ` +
		`page or through /api/read/MMU/{addr}.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		err := cfg.validate()
		if err != nil {
			return err
		}

		b := cfg.simulationBuilder(true)
		if openBrowser {
			b = b.WithBrowser()
		}

		sim := b.Build()
		defer sim.Terminate()

		m := cfg.mmuBuilder().Build("MMU")
		sim.RegisterComponent(m)

		monitor := sim.GetMonitor()

		monitor.WithLock(func() {
			err = buildDemoTopology(m)
		})
		if err != nil {
			return err
		}

		workloads := []struct {
			name   string
			stride uint64
		}{
			{"Consecutive reads", 1},
			{"Strided reads", vm.LineSize},
		}

		for _, w := range workloads {
			bar := monitor.CreateProgressBar(w.name, 100)
			readSequence(m, demoBase, w.stride, 100, func(read func()) {
				monitor.WithLock(read)
				bar.IncrementFinished(1)
			})
			monitor.CompleteProgressBar(bar)
		}

		fmt.Fprintf(os.Stderr, "Serving %s, press Ctrl+C to stop\n",
			sim.MonitorURL())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&cfg.MonitorPort, "port", cfg.MonitorPort,
		"port of the monitoring server, 0 for a random one")
	serveCmd.Flags().BoolVar(&openBrowser, "open", false,
		"open the monitoring page in a browser")
}
