package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/trace"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/spf13/cobra"
)

var (
	traceFaultsOnly bool
	traceEdits      bool
	traceLimit      int
)

var traceCmd = &cobra.Command{
	Use:   "trace <db>",
	Short: "Print the accesses recorded with --trace-db.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !strings.HasSuffix(path, ".sqlite3") {
			path += ".sqlite3"
		}

		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("no trace database: %w", err)
		}

		reader := datarecording.NewReader(path)
		defer reader.Close()

		reader.MapTable(trace.TableAccesses, trace.AccessEntry{})
		reader.MapTable(trace.TablePageTableEdits, trace.PageTableEditEntry{})

		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if traceEdits {
			edits, _, err := reader.Query(ctx, trace.TablePageTableEdits,
				datarecording.QueryParams{OrderBy: "Seq", Limit: traceLimit})
			if err != nil {
				return err
			}

			for _, e := range edits {
				fmt.Fprintln(out, formatEdit(e.(*trace.PageTableEditEntry)))
			}

			return nil
		}

		params := datarecording.QueryParams{OrderBy: "ID", Limit: traceLimit}
		if traceFaultsOnly {
			params.Where = "Fault = ?"
			params.Args = []any{true}
		}

		accesses, total, err := reader.Query(ctx, trace.TableAccesses, params)
		if err != nil {
			return err
		}

		for _, a := range accesses {
			fmt.Fprintln(out, formatAccess(a.(*trace.AccessEntry)))
		}

		if len(accesses) < total {
			fmt.Fprintf(out, "... %d more\n", total-len(accesses))
		}

		return nil
	},
}

func formatAccess(a *trace.AccessEntry) string {
	if a.Fault {
		return fmt.Sprintf("%6d %-9s %-10s %s page fault",
			a.ID, a.Location, a.Kind, vm.VAddr(a.VAddr))
	}

	return fmt.Sprintf("%6d %-9s %-10s %s -> %s tlb:%s l1:%s",
		a.ID, a.Location, a.Kind, vm.VAddr(a.VAddr), vm.PAddr(a.PAddr),
		hitOrMiss(a.TLBHit), hitOrMiss(a.L1Hit))
}

func formatEdit(e *trace.PageTableEditEntry) string {
	if e.Unmap {
		return fmt.Sprintf("%6d %-9s unmap %d[%03d]",
			e.Seq, e.Location, e.Table, e.Index)
	}

	return fmt.Sprintf("%6d %-9s map   %d[%03d] -> %d",
		e.Seq, e.Location, e.Table, e.Index, e.Target)
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}

	return "miss"
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().BoolVar(&traceFaultsOnly, "faults-only", false,
		"only print accesses that faulted")
	traceCmd.Flags().BoolVar(&traceEdits, "edits", false,
		"print page table edits instead of accesses")
	traceCmd.Flags().IntVar(&traceLimit, "limit", 0,
		"print at most this many rows, 0 for all")
}
