package cmd

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
	"github.com/sarchlab/pipesim/simulation"
	"github.com/sarchlab/pipesim/topology"
	"github.com/sarchlab/pipesim/tracing"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the traffic of a network description.",
		Long: "`run --network net.yaml` builds the network, injects its flows " +
			"and writes the bytes carried by every core link to the report.",
		Args: cobra.NoArgs,
		RunE: runSimulation,
	}

	runCmd.Flags().String("network", "", "Network description (YAML or JSON).")
	runCmd.Flags().String("report", "",
		"Report file. Defaults to $"+EnvReport+" or "+ledger.DefaultReportFile+".")
	runCmd.Flags().String("fct-report", "",
		"Write the completion time of every flow to this CSV file. Defaults "+
			"to $"+EnvFlowReport+".")
	runCmd.Flags().String("record", "",
		"Record snapshots and transits into this SQLite database (without "+
			"extension). Defaults to $"+EnvRecord+".")
	runCmd.Flags().String("snapshot-interval", "",
		"Snapshot the link ledger every interval of simulated time, e.g. 10us.")
	runCmd.Flags().Bool("monitor", false, "Serve the web monitor while running.")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the web monitor. Defaults to $"+EnvMonitorPort+" or a random port.")
	runCmd.Flags().Bool("open", false, "Open the web monitor in a browser.")
	runCmd.Flags().Bool("trace-transits", false,
		"Log every packet passing a pipe at trace level.")
	runCmd.Flags().Bool("strict", false,
		"Panic on pipe scheduling invariant violations.")
	runCmd.Flags().String("core-substring", "",
		"Track links by node name containing this substring instead of by role.")

	_ = runCmd.MarkFlagRequired("network")

	return runCmd
}

type runOptions struct {
	network          string
	report           string
	flowReport       string
	record           string
	snapshotInterval sim.Duration
	monitor          bool
	monitorPort      int
	open             bool
	traceTransits    bool
	strict           bool
	coreSubstring    string
}

func parseRunOptions(cmd *cobra.Command) (runOptions, error) {
	o := runOptions{}
	var err error

	o.network, _ = cmd.Flags().GetString("network")
	o.report = stringFlagOrEnv(cmd, "report", EnvReport, ledger.DefaultReportFile)
	o.flowReport = stringFlagOrEnv(cmd, "fct-report", EnvFlowReport, "")
	o.record = stringFlagOrEnv(cmd, "record", EnvRecord, "")
	o.monitor, _ = cmd.Flags().GetBool("monitor")
	o.open, _ = cmd.Flags().GetBool("open")
	o.traceTransits, _ = cmd.Flags().GetBool("trace-transits")
	o.strict, _ = cmd.Flags().GetBool("strict")
	o.coreSubstring, _ = cmd.Flags().GetString("core-substring")

	o.monitorPort, err = intFlagOrEnv(cmd, "monitor-port", EnvMonitorPort, 0)
	if err != nil {
		return o, err
	}

	interval, _ := cmd.Flags().GetString("snapshot-interval")
	if interval != "" {
		o.snapshotInterval, err = sim.ParseDuration(interval)
		if err != nil {
			return o, err
		}

		if o.snapshotInterval <= 0 {
			return o, fmt.Errorf("snapshot interval must be positive")
		}
	}

	if o.open && !o.monitor {
		return o, fmt.Errorf("--open requires --monitor")
	}

	return o, nil
}

func (o runOptions) simulationBuilder() simulation.Builder {
	b := simulation.MakeBuilder().
		WithReportPath(o.report).
		WithFlowReportPath(o.flowReport)

	if o.monitor {
		b = b.WithMonitorPort(o.monitorPort)
	} else {
		b = b.WithoutMonitoring()
	}

	if o.record != "" {
		b = b.WithOutputFileName(o.record)
	}

	if o.strict {
		b = b.WithStrictChecks()
	}

	if o.coreSubstring != "" {
		b = b.WithClassifier(network.NameClassifier{Substring: o.coreSubstring})
	}

	return b
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	o, err := parseRunOptions(cmd)
	if err != nil {
		return err
	}

	n, err := topology.ReadNetwork(o.network, nil)
	if err != nil {
		return err
	}

	s := o.simulationBuilder().Build()
	atexit.Register(func() { _ = s.Terminate() })

	built, err := topology.Build(s, n)
	if err != nil {
		_ = s.Terminate()
		return err
	}

	counter := attachTracers(s, o)

	if o.snapshotInterval > 0 {
		s.EnableSnapshots(o.snapshotInterval)
	}

	if o.open {
		if err := s.GetMonitor().OpenInBrowser(); err != nil {
			log.WithError(err).Warn("failed to open browser")
		}
	}

	log.WithFields(log.Fields{
		"simulation": s.ID(),
		"network":    n.Name,
		"pipes":      len(s.Pipes()),
		"flows":      len(n.Flows),
	}).Info("simulation started")

	built.Traffic.Start()

	if err := s.Run(); err != nil {
		_ = s.Terminate()
		return err
	}

	if err := s.Terminate(); err != nil {
		return err
	}

	printRunSummary(cmd.OutOrStdout(), s, counter)

	return nil
}

func attachTracers(s *simulation.Simulation, o runOptions) *tracing.TransitCounter {
	counter := tracing.NewTransitCounter()

	var dbTracer *tracing.DBTracer
	if s.GetDataRecorder() != nil {
		dbTracer = tracing.NewDBTracer(s.GetDataRecorder())
	}

	var transitLogger *tracing.TransitLogger
	if o.traceTransits {
		transitLogger = tracing.NewTransitLogger(log.StandardLogger())
	}

	for _, p := range s.Pipes() {
		tracing.CollectTrace(p, counter)

		if dbTracer != nil {
			tracing.CollectTrace(p, dbTracer)
		}

		if transitLogger != nil {
			tracing.CollectTrace(p, transitLogger)
		}
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		s.GetEngine().AcceptHook(sim.NewEventLogger(log.StandardLogger()))
	}

	return counter
}

func printRunSummary(
	w io.Writer,
	s *simulation.Simulation,
	counter *tracing.TransitCounter,
) {
	packets, bytes := s.Delivered()
	fmt.Fprintf(w, "Simulated time: %s\n", s.GetEngine().CurrentTime())
	fmt.Fprintf(w, "Delivered: %d packets, %d bytes\n", packets, bytes)

	busiest := tracing.PipeStats{}
	for _, st := range counter.All() {
		if st.MaxInPipe > busiest.MaxInPipe {
			busiest = st
		}
	}

	if busiest.Pipe != "" {
		fmt.Fprintf(w, "Busiest pipe: %s (%d packets in flight)\n",
			busiest.Pipe, busiest.MaxInPipe)
	}

	if s.ReportPath() != "" {
		fmt.Fprintf(w, "Link report: %s\n", s.ReportPath())
	}

	printSummary(w, s.GetLedger().Summarize())

	if s.FlowReportPath() != "" {
		fmt.Fprintf(w, "Flow report: %s\n", s.FlowReportPath())
	}

	printFlowSummary(w, simulation.SummarizeFlows(s.FlowCompletions()))
}
