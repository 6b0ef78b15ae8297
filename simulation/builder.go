package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/pipesim/datarecording"
	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/monitoring"
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	outputFileName string
	reportPath     string
	flowReportPath string
	classifier     network.Classifier
	strict         bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn:  true,
		reportPath: ledger.DefaultReportFile,
		classifier: network.DefaultClassifier(),
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

// WithDataRecording records snapshots and traces into an SQLite database
// with a generated name.
func (b Builder) WithDataRecording() Builder {
	b.recordingOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder
// and turns data recording on.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordingOn = true
	b.outputFileName = filename
	return b
}

// WithReportPath sets where the link utilization report is written when the
// simulation terminates. An empty path disables the report.
func (b Builder) WithReportPath(path string) Builder {
	b.reportPath = path
	return b
}

// WithFlowReportPath sets where the flow completion report is written when
// the simulation terminates. The report is off by default.
func (b Builder) WithFlowReportPath(path string) Builder {
	b.flowReportPath = path
	return b
}

// WithClassifier sets the rule that decides which links the ledger tracks.
func (b Builder) WithClassifier(c network.Classifier) Builder {
	b.classifier = c
	return b
}

// WithStrictChecks makes every pipe of the simulation panic on scheduling
// invariant violations.
func (b Builder) WithStrictChecks() Builder {
	b.strict = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if b.classifier == nil {
		panic("classifier must not be nil")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:             xid.New().String(),
		engine:         sim.NewSerialEngine(),
		ledger:         ledger.New(),
		reportPath:     b.reportPath,
		flowReportPath: b.flowReportPath,
		classifier:     b.classifier,
		strict:         b.strict,
		pipeIndex:      make(map[string]int),
		hostIndex:      make(map[string]int),
	}

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "pipesim_sim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterLedger(s.ledger)
		s.monitor.StartServer()
	}

	return s
}
