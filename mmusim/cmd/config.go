package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/simulation"
	"github.com/spf13/pflag"
)

type config struct {
	TLBSets     int
	TLBWays     int
	L1Sets      int
	L1Ways      int
	FirstFrame  uint64
	TraceDB     string
	MonitorPort int
	Verbose     bool
}

func defaultConfig() config {
	return config{
		TLBSets:    128,
		TLBWays:    4,
		L1Sets:     64,
		L1Ways:     8,
		FirstFrame: 100,
	}
}

// loadDotEnv reads .env from the working directory, if there is one.
// Variables already in the environment are kept.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %s", err)
	}
}

func (c *config) loadEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"MMUSIM_TLB_SETS", &c.TLBSets},
		{"MMUSIM_TLB_WAYS", &c.TLBWays},
		{"MMUSIM_L1_SETS", &c.L1Sets},
		{"MMUSIM_L1_WAYS", &c.L1Ways},
		{"MMUSIM_MONITOR_PORT", &c.MonitorPort},
	}

	for _, v := range ints {
		s, ok := os.LookupEnv(v.name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}

		*v.dst = n
	}

	if s, ok := os.LookupEnv("MMUSIM_FIRST_FRAME"); ok {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("MMUSIM_FIRST_FRAME: %w", err)
		}

		c.FirstFrame = n
	}

	if s, ok := os.LookupEnv("MMUSIM_TRACE_DB"); ok {
		c.TraceDB = s
	}

	return nil
}

func (c *config) bindFlags(flags *pflag.FlagSet) {
	flags.IntVar(&c.TLBSets, "tlb-sets", c.TLBSets,
		"number of TLB sets")
	flags.IntVar(&c.TLBWays, "tlb-ways", c.TLBWays,
		"number of TLB ways per set, 0 for unbounded")
	flags.IntVar(&c.L1Sets, "l1-sets", c.L1Sets,
		"number of L1 cache sets")
	flags.IntVar(&c.L1Ways, "l1-ways", c.L1Ways,
		"number of L1 cache ways per set, 0 for unbounded")
	flags.Uint64Var(&c.FirstFrame, "first-frame", c.FirstFrame,
		"first physical frame handed out, taken by the root table")
	flags.StringVar(&c.TraceDB, "trace-db", c.TraceDB,
		"record every access into this sqlite database (without suffix)")
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose,
		"log every step of every access to stderr")
}

func (c config) validate() error {
	switch {
	case c.TLBSets <= 0:
		return fmt.Errorf("tlb-sets must be positive, got %d", c.TLBSets)
	case c.TLBWays < 0:
		return fmt.Errorf("tlb-ways must not be negative, got %d", c.TLBWays)
	case c.L1Sets <= 0:
		return fmt.Errorf("l1-sets must be positive, got %d", c.L1Sets)
	case c.L1Ways < 0:
		return fmt.Errorf("l1-ways must not be negative, got %d", c.L1Ways)
	}

	return nil
}

func (c config) mmuBuilder() mmu.Builder {
	return mmu.MakeBuilder().
		WithFirstFrame(vm.Frame(c.FirstFrame)).
		WithTLBNumSets(c.TLBSets).
		WithTLBNumWays(c.TLBWays).
		WithL1NumSets(c.L1Sets).
		WithL1WayAssociativity(c.L1Ways)
}

func (c config) simulationBuilder(monitored bool) simulation.Builder {
	b := simulation.MakeBuilder()

	if monitored {
		b = b.WithMonitorPort(c.MonitorPort)
	} else {
		b = b.WithoutMonitoring()
	}

	if c.TraceDB == "" {
		b = b.WithoutTracing()
	} else {
		b = b.WithTraceDB(c.TraceDB)
	}

	if c.Verbose {
		b = b.WithLogger(log.New(os.Stderr, "", 0))
	}

	return b
}
