package simulation

import (
	"log"

	"github.com/rs/xid"
	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/trace"
	"github.com/sarchlab/mmusim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn   bool
	monitorPort int
	openBrowser bool
	tracingOn   bool
	traceDB     string
	logger      *log.Logger
}

// MakeBuilder creates a new builder. By default, the simulation is monitored
// and traced into a fresh database.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
		tracingOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutTracing sets the simulation to not record accesses.
func (b Builder) WithoutTracing() Builder {
	b.tracingOn = false
	return b
}

// WithTraceDB sets the path of the trace database, without the .sqlite3
// suffix.
func (b Builder) WithTraceDB(path string) Builder {
	b.traceDB = path
	return b
}

// WithLogger makes every registered MMU log what it does to logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		panic("monitor options cannot be set when monitoring is disabled")
	}

	if !b.tracingOn && b.traceDB != "" {
		panic("trace database cannot be set when tracing is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		logger:        b.logger,
		compNameIndex: make(map[string]int),
	}

	if b.tracingOn {
		outputPath := b.traceDB
		if outputPath == "" {
			outputPath = "mmusim_sim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.dbTracer = trace.NewDBTracer(s.dataRecorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().
			WithPortNumber(b.monitorPort).
			WithBrowser(b.openBrowser)
		s.monitorURL = s.monitor.StartServer()
	}

	return s
}
