package cmd

import (
	"fmt"
	"io"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/report"
	"github.com/sarchlab/mmusim/sim/hooking"
	"github.com/spf13/cobra"
)

var countHooks bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the homonym experiment and dump the MMU state.",
	Long: `demo builds a page table in which two virtual pages share the ` +
		`same frames, reads 100 consecutive bytes, dumps the MMU, ` +
		`invalidates both caches, reads 100 addresses 64 bytes apart and ` +
		`dumps again. Counters are reset after each dump.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := cfg.validate()
		if err != nil {
			return err
		}

		sim := cfg.simulationBuilder(false).Build()
		defer sim.Terminate()

		m := cfg.mmuBuilder().Build("MMU")
		sim.RegisterComponent(m)

		var counter *hooking.PosCountTracer
		if countHooks {
			counter = hooking.NewPosCountTracer()
			m.AcceptHook(counter)
		}

		err = buildDemoTopology(m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Consecutive reads")
		readSequence(m, demoBase, 1, 100, direct)
		err = dumpAndReset(out, m)
		if err != nil {
			return err
		}

		m.InvalidateTLB()
		m.InvalidateCache()

		fmt.Fprintln(out, "Reads with a stride of one line")
		readSequence(m, demoBase, vm.LineSize, 100, direct)

		err = dumpAndReset(out, m)
		if err != nil {
			return err
		}

		if counter != nil {
			fmt.Fprintln(out,
				report.Box("Hooks", report.HookCounts(counter.Counts())))
		}

		return nil
	},
}

func dumpAndReset(w io.Writer, m *mmu.Comp) error {
	err := report.Dump(w, m)
	if err != nil {
		return err
	}

	m.ResetStats()

	return nil
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().BoolVar(&countHooks, "count-hooks", false,
		"print how often each hook position fired")
}
