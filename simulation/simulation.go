// Package simulation assembles the services around the MMUs of one run.
package simulation

import (
	"log"

	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/trace"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/monitoring"
)

// A Simulation provides the services an MMU run needs: tracing into a
// database, logging and monitoring.
type Simulation struct {
	id string

	dataRecorder datarecording.DataRecorder
	dbTracer     *trace.DBTracer
	monitor      *monitoring.Monitor
	monitorURL   string
	logger       *log.Logger

	components    []*mmu.Comp
	compNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if tracing is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server, if any.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterComponent registers an MMU with the simulation and attaches the
// tracer, the logger and the monitor to it.
func (s *Simulation) RegisterComponent(c *mmu.Comp) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.dbTracer != nil {
		c.AcceptHook(s.dbTracer)
	}

	if s.logger != nil {
		c.AcceptHook(mmu.NewLogHook(s.logger))
	}

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) *mmu.Comp {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Terminate flushes and closes the trace database.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		err := s.dataRecorder.Close()
		if err != nil {
			log.Panic(err)
		}
	}
}
