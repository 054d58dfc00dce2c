package cmd

import (
	"errors"
	"fmt"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/report"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <addr>...",
	Short: "Read virtual addresses against the demo page table.",
	Long: `read builds the page table of the demo and reads each address in ` +
		`order. Addresses are decimal or 0x-prefixed hexadecimal.`,
	Example: "  mmusim read 0x50000200000 0x50000000040 0x1000",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := cfg.validate()
		if err != nil {
			return err
		}

		addrs := make([]vm.VAddr, 0, len(args))
		for _, arg := range args {
			vAddr, err := vm.ParseVAddr(arg)
			if err != nil {
				return err
			}

			addrs = append(addrs, vAddr)
		}

		sim := cfg.simulationBuilder(false).Build()
		defer sim.Terminate()

		m := cfg.mmuBuilder().Build("MMU")
		sim.RegisterComponent(m)

		err = buildDemoTopology(m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, vAddr := range addrs {
			pAddr, err := m.Read(vAddr)

			var fault *vm.PageFaultError
			switch {
			case err == nil:
				fmt.Fprintf(out, "%s -> %s\n", vAddr, pAddr)
			case errors.As(err, &fault):
				fmt.Fprintf(out, "%s: %s\n", vAddr, fault)
			default:
				return err
			}
		}

		fmt.Fprintln(out, report.Box("Stats", report.Stats(m.Stats())))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
