package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/simulation"
	"github.com/sarchlab/pipesim/topology"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report [core_link_bytes.csv]",
		Short: "Summarize a link report or inspect a network.",
		Long: "`report core_link_bytes.csv` prints the links of a report and " +
			"how evenly traffic is spread over them. `report --flows " +
			"flow_completion.csv` prints flow completion time statistics. " +
			"`report --network net.yaml` builds the network without running " +
			"it and prints the route of every flow.",
		Args: cobra.MaximumNArgs(1),
		RunE: report,
	}

	reportCmd.Flags().String("network", "", "Network description to inspect.")
	reportCmd.Flags().String("flows", "", "Flow report to summarize.")

	return reportCmd
}

func report(cmd *cobra.Command, args []string) error {
	networkFile, _ := cmd.Flags().GetString("network")
	flowFile, _ := cmd.Flags().GetString("flows")

	given := len(args)
	if networkFile != "" {
		given++
	}
	if flowFile != "" {
		given++
	}

	switch {
	case given > 1:
		return fmt.Errorf("give only one of a report file, --flows or --network")
	case flowFile != "":
		return summarizeFlowReport(cmd.OutOrStdout(), flowFile)
	case networkFile != "":
		return inspectNetwork(cmd.OutOrStdout(), networkFile)
	case len(args) == 1:
		return summarizeReport(cmd.OutOrStdout(), args[0])
	default:
		return summarizeReport(cmd.OutOrStdout(), ledger.DefaultReportFile)
	}
}

func summarizeReport(w io.Writer, path string) error {
	l, err := ledger.ReadReportFile(path)
	if err != nil {
		return err
	}

	for _, e := range l.Snapshot() {
		fmt.Fprintf(w, "%-30s %12d\n", e.Link, e.Bytes)
	}

	printSummary(w, l.Summarize())

	return nil
}

func printSummary(w io.Writer, s ledger.Summary) {
	fmt.Fprintf(w, "Links: %d, total %d bytes\n", s.Links, s.TotalBytes)

	if s.Links == 0 {
		return
	}

	fmt.Fprintf(w, "Min: %s (%d bytes), max: %s (%d bytes)\n",
		s.Min.Link, s.Min.Bytes, s.Max.Link, s.Max.Bytes)
	fmt.Fprintf(w, "Normalized utilization: mean %.4f, std %.4f, variance %.4f\n",
		s.Mean, s.StdDev, s.Variance)
}

func summarizeFlowReport(w io.Writer, path string) error {
	flows, err := simulation.ReadFlowReportFile(path)
	if err != nil {
		return err
	}

	for _, f := range flows {
		fmt.Fprintf(w, "%-30s %-20s %8d packets %12d bytes %12s\n",
			f.Flow, f.Dst, f.Packets, f.Bytes, f.FCT())
	}

	printFlowSummary(w, simulation.SummarizeFlows(flows))

	return nil
}

func printFlowSummary(w io.Writer, s simulation.FlowSummary) {
	fmt.Fprintf(w, "Flows: %d\n", s.Flows)

	if s.Flows == 0 {
		return
	}

	fmt.Fprintf(w, "FCT (us): mean %.2f, median %.2f, p95 %.2f, p99 %.2f, "+
		"min %.2f, max %.2f, std %.2f\n",
		s.Mean, s.Median, s.P95, s.P99, s.Min, s.Max, s.StdDev)
	fmt.Fprintf(w, "Mean throughput: %.4f Gbps\n", s.MeanThroughputGbps)
	fmt.Fprintf(w, "Reordered: %d of %d packets (ratio %.4f)\n",
		s.Reordered, s.Packets, s.ReorderingRatio)

	for _, c := range s.BySize {
		fmt.Fprintf(w, "  %s flows (n=%d): mean %.2f us, median %.2f us, "+
			"max %.2f us\n", c.Class, c.Flows, c.Mean, c.Median, c.Max)
	}

	for _, g := range s.Incast {
		fmt.Fprintf(w, "  incast at %s (%d flows): mean %.2f us, max %.2f us\n",
			g.Dst, len(g.Flows), g.Mean, g.Max)
	}
}

func inspectNetwork(w io.Writer, path string) error {
	n, err := topology.ReadNetwork(path, nil)
	if err != nil {
		return err
	}

	s := simulation.MakeBuilder().
		WithoutMonitoring().
		WithReportPath("").
		Build()
	defer func() { _ = s.Terminate() }()

	built, err := topology.Build(s, n)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Network %s: %d nodes, %d pipes, %d flows, %d packets\n",
		n.Name, len(built.Nodes), len(built.Pipes), len(n.Flows),
		built.Traffic.TotalPackets())

	for i, f := range n.Flows {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("flow%d", i)
		}

		fmt.Fprintf(w, "%s: %s\n", name, built.Routes[name])
	}

	return nil
}
