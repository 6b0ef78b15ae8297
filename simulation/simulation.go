// Package simulation holds the objects that live for the duration of one
// simulation run.
package simulation

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/pipesim/datarecording"
	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/monitoring"
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/pipe"
	"github.com/sarchlab/pipesim/sim"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id     string
	engine *sim.SerialEngine
	ledger *ledger.Ledger

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	progressBar  *monitoring.ProgressBar

	reportPath     string
	flowReportPath string
	classifier     network.Classifier
	strict         bool

	pipes     []*pipe.Comp
	pipeIndex map[string]int
	hosts     []*network.Host
	hostIndex map[string]int

	deliveredPackets uint64
	deliveredBytes   uint64

	terminated bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetLedger returns the link utilization ledger of the simulation.
func (s *Simulation) GetLedger() *ledger.Ledger {
	return s.ledger
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if data recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// ReportPath returns where the report is written on termination.
func (s *Simulation) ReportPath() string {
	return s.reportPath
}

// PipeBuilder returns a pipe builder bound to the engine and the ledger of
// the simulation.
func (s *Simulation) PipeBuilder() pipe.Builder {
	b := pipe.MakeBuilder().
		WithEngine(s.engine).
		WithLedger(s.ledger).
		WithClassifier(s.classifier)

	if s.strict {
		b = b.WithStrictChecks()
	}

	return b
}

// NewPipe builds a pipe with the given delay and registers it.
func (s *Simulation) NewPipe(name string, delay sim.Duration) (*pipe.Comp, error) {
	p, err := s.PipeBuilder().WithDelay(delay).Build(name)
	if err != nil {
		return nil, fmt.Errorf("building pipe %q: %w", name, err)
	}

	s.RegisterPipe(p)

	return p, nil
}

// RegisterPipe registers a pipe with the simulation.
func (s *Simulation) RegisterPipe(p *pipe.Comp) {
	name := p.Name()
	if _, exists := s.pipeIndex[name]; exists {
		panic("pipe " + name + " already registered")
	}

	s.pipes = append(s.pipes, p)
	s.pipeIndex[name] = len(s.pipes) - 1

	if s.monitor != nil {
		s.monitor.RegisterPipe(p)
	}
}

// GetPipeByName returns the pipe with the given name, or nil.
func (s *Simulation) GetPipeByName(name string) *pipe.Comp {
	i, ok := s.pipeIndex[name]
	if !ok {
		return nil
	}

	return s.pipes[i]
}

// Pipes returns all registered pipes in registration order.
func (s *Simulation) Pipes() []*pipe.Comp {
	return s.pipes
}

// RegisterHost registers a host and counts the packets delivered to it.
func (s *Simulation) RegisterHost(h *network.Host) {
	name := h.Name()
	if _, exists := s.hostIndex[name]; exists {
		panic("host " + name + " already registered")
	}

	s.hosts = append(s.hosts, h)
	s.hostIndex[name] = len(s.hosts) - 1

	h.AcceptHook(sim.HookFunc(s.countDelivery))
}

func (s *Simulation) countDelivery(ctx sim.HookCtx) {
	if ctx.Pos != network.HookPosHostDeliver {
		return
	}

	d := ctx.Detail.(network.Delivery)
	s.deliveredPackets++
	s.deliveredBytes += d.Packet.Size()

	if s.progressBar != nil {
		s.progressBar.MoveInProgressToFinished(1)
	}
}

// GetHostByName returns the host with the given name, or nil.
func (s *Simulation) GetHostByName(name string) *network.Host {
	i, ok := s.hostIndex[name]
	if !ok {
		return nil
	}

	return s.hosts[i]
}

// Hosts returns all registered hosts in registration order.
func (s *Simulation) Hosts() []*network.Host {
	return s.hosts
}

// ExpectPackets announces how many packets the run will inject. The monitor,
// if any, shows the delivery progress.
func (s *Simulation) ExpectPackets(n uint64) {
	if s.monitor == nil {
		return
	}

	s.progressBar = s.monitor.CreateProgressBar("Packets delivered", n)
	s.progressBar.IncrementInProgress(n)
}

// Delivered returns the number of packets and bytes that reached a
// registered host.
func (s *Simulation) Delivered() (packets, bytes uint64) {
	return s.deliveredPackets, s.deliveredBytes
}

// Run runs the engine until no events are left and then calls the
// simulation end handlers.
func (s *Simulation) Run() error {
	err := s.engine.Run()
	if err != nil {
		return err
	}

	s.engine.Finished()

	log.WithFields(log.Fields{
		"simulation": s.id,
		"sim_time":   s.engine.CurrentTime().String(),
		"packets":    s.deliveredPackets,
		"bytes":      s.deliveredBytes,
	}).Info("simulation finished")

	return nil
}

// FlowReportPath returns where the flow report is written, or an empty string
// if it is off.
func (s *Simulation) FlowReportPath() string {
	return s.flowReportPath
}

// Terminate writes the link utilization and flow reports, records the flow
// completions, closes the data recorder and stops the monitor. Calling it
// more than once has no effect.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}
	s.terminated = true

	var result error

	if s.reportPath != "" {
		if err := s.ledger.WriteFile(s.reportPath); err != nil {
			result = multierror.Append(result, err)
		} else {
			log.WithField("file", s.reportPath).Info("link report written")
		}
	}

	if s.flowReportPath != "" || s.dataRecorder != nil {
		flows := s.FlowCompletions()

		if s.flowReportPath != "" {
			if err := WriteFlowReportFile(s.flowReportPath, flows); err != nil {
				result = multierror.Append(result, err)
			} else {
				log.WithField("file", s.flowReportPath).Info("flow report written")
			}
		}

		if s.dataRecorder != nil {
			s.recordFlows(flows)
		}
	}

	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if s.monitor != nil {
		if s.progressBar != nil {
			s.monitor.CompleteProgressBar(s.progressBar)
		}

		if err := s.monitor.StopServer(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}
