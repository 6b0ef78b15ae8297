package simulation

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/pipesim/sim"
)

// FlowTable is the table flow completions are recorded into.
const FlowTable = "flow_completion"

// DefaultFlowReportFile is the conventional name of the flow report.
const DefaultFlowReportFile = "flow_completion.csv"

// Flows of at least MediumFlowBytes are medium, flows of at least
// LargeFlowBytes are large, and the rest are small.
const (
	MediumFlowBytes = 50 << 20
	LargeFlowBytes  = 100 << 20
)

var flowReportHeader = []string{
	"flow", "dst", "packets", "bytes", "reordered", "start_ps", "end_ps",
	"fct_ps",
}

// flowPacket is a packet that knows the flow it belongs to.
type flowPacket interface {
	Flow() string
	CreatedAt() sim.VTimeInPs
}

// A FlowCompletion describes the delivered part of one flow.
type FlowCompletion struct {
	Flow      string
	Dst       string
	Packets   int
	Bytes     uint64
	Reordered int
	Start     sim.VTimeInPs
	End       sim.VTimeInPs
}

// FCT returns the flow completion time, from the creation of the first packet
// to the delivery of the last one.
func (f FlowCompletion) FCT() sim.Duration {
	return f.End.Sub(f.Start)
}

// ThroughputGbps returns the goodput of the flow over its completion time.
func (f FlowCompletion) ThroughputGbps() float64 {
	fct := f.FCT()
	if fct <= 0 {
		return 0
	}

	// bits per picosecond are Tbps
	return float64(f.Bytes) * 8 / float64(fct) * 1e3
}

// SizeClass returns small, medium or large.
func (f FlowCompletion) SizeClass() string {
	switch {
	case f.Bytes >= LargeFlowBytes:
		return "large"
	case f.Bytes >= MediumFlowBytes:
		return "medium"
	default:
		return "small"
	}
}

type flowTableEntry struct {
	Flow      string
	Dst       string
	Packets   int
	Bytes     uint64
	Reordered int
	StartPs   uint64
	EndPs     uint64
}

// FlowCompletions groups the packets delivered to the registered hosts by
// flow, sorted by flow name. A packet counts as reordered when a packet of
// the same flow created after it was delivered before it.
func (s *Simulation) FlowCompletions() []FlowCompletion {
	index := make(map[string]int)
	flows := []FlowCompletion{}
	newest := []sim.VTimeInPs{}

	for _, h := range s.hosts {
		for _, d := range h.Deliveries() {
			p, ok := d.Packet.(flowPacket)
			if !ok {
				continue
			}

			i, found := index[p.Flow()]
			if !found {
				i = len(flows)
				index[p.Flow()] = i
				flows = append(flows, FlowCompletion{
					Flow:  p.Flow(),
					Dst:   h.Name(),
					Start: p.CreatedAt(),
				})
				newest = append(newest, p.CreatedAt())
			}

			f := &flows[i]
			f.Packets++
			f.Bytes += d.Packet.Size()

			if p.CreatedAt() < f.Start {
				f.Start = p.CreatedAt()
			}

			if d.Time > f.End {
				f.End = d.Time
			}

			if p.CreatedAt() < newest[i] {
				f.Reordered++
			} else {
				newest[i] = p.CreatedAt()
			}
		}
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Flow < flows[j].Flow
	})

	return flows
}

func (s *Simulation) recordFlows(flows []FlowCompletion) {
	s.dataRecorder.CreateTable(FlowTable, flowTableEntry{})

	for _, f := range flows {
		s.dataRecorder.InsertData(FlowTable, flowTableEntry{
			Flow:      f.Flow,
			Dst:       f.Dst,
			Packets:   f.Packets,
			Bytes:     f.Bytes,
			Reordered: f.Reordered,
			StartPs:   uint64(f.Start),
			EndPs:     uint64(f.End),
		})
	}
}

// FlowStats are statistics of flow completion times, in microseconds.
type FlowStats struct {
	Flows    int     `json:"flows"`
	Mean     float64 `json:"mean_us"`
	Median   float64 `json:"median_us"`
	P95      float64 `json:"p95_us"`
	P99      float64 `json:"p99_us"`
	Min      float64 `json:"min_us"`
	Max      float64 `json:"max_us"`
	StdDev   float64 `json:"std_dev_us"`
	Variance float64 `json:"variance"`
}

// SizeClassStats are the completion time statistics of one size class.
type SizeClassStats struct {
	Class string `json:"class"`
	FlowStats
}

// IncastGroup lists the flows sharing one destination.
type IncastGroup struct {
	Dst   string   `json:"dst"`
	Flows []string `json:"flows"`
	Mean  float64  `json:"mean_us"`
	Max   float64  `json:"max_us"`
}

// FlowSummary describes the completion of a set of flows.
type FlowSummary struct {
	FlowStats

	MeanThroughputGbps float64          `json:"mean_throughput_gbps"`
	Packets            int              `json:"packets"`
	Reordered          int              `json:"reordered"`
	ReorderingRatio    float64          `json:"reordering_ratio"`
	BySize             []SizeClassStats `json:"by_size"`
	Incast             []IncastGroup    `json:"incast"`
}

// SummarizeFlows computes completion time statistics overall, per size class
// and per destination shared by several flows. Percentiles are empirical.
func SummarizeFlows(flows []FlowCompletion) FlowSummary {
	s := FlowSummary{}
	if len(flows) == 0 {
		return s
	}

	fcts := make([]float64, len(flows))
	throughputs := make([]float64, len(flows))
	byClass := make(map[string][]float64)
	byDst := make(map[string][]int)
	dsts := []string{}

	for i, f := range flows {
		fcts[i] = float64(f.FCT()) / float64(sim.Microsecond)
		throughputs[i] = f.ThroughputGbps()
		s.Packets += f.Packets
		s.Reordered += f.Reordered

		class := f.SizeClass()
		byClass[class] = append(byClass[class], fcts[i])

		if _, ok := byDst[f.Dst]; !ok {
			dsts = append(dsts, f.Dst)
		}
		byDst[f.Dst] = append(byDst[f.Dst], i)
	}

	s.FlowStats = fctStats(fcts)
	s.MeanThroughputGbps = stat.Mean(throughputs, nil)

	if s.Packets > 0 {
		s.ReorderingRatio = float64(s.Reordered) / float64(s.Packets)
	}

	for _, class := range []string{"small", "medium", "large"} {
		if v := byClass[class]; len(v) > 0 {
			s.BySize = append(s.BySize,
				SizeClassStats{Class: class, FlowStats: fctStats(v)})
		}
	}

	sort.Strings(dsts)
	for _, dst := range dsts {
		members := byDst[dst]
		if len(members) < 2 {
			continue
		}

		g := IncastGroup{Dst: dst}
		v := make([]float64, 0, len(members))
		for _, i := range members {
			g.Flows = append(g.Flows, flows[i].Flow)
			v = append(v, fcts[i])
		}

		st := fctStats(v)
		g.Mean, g.Max = st.Mean, st.Max
		s.Incast = append(s.Incast, g)
	}

	return s
}

func fctStats(fcts []float64) FlowStats {
	x := append([]float64(nil), fcts...)
	sort.Float64s(x)

	st := FlowStats{
		Flows:  len(x),
		Mean:   stat.Mean(x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, x, nil),
		P99:    stat.Quantile(0.99, stat.Empirical, x, nil),
		Min:    x[0],
		Max:    x[len(x)-1],
	}

	if len(x) > 1 {
		st.Variance = stat.Variance(x, nil)
		st.StdDev = stat.StdDev(x, nil)
	}

	return st
}

// WriteFlowReport writes one CSV row per flow.
func WriteFlowReport(w io.Writer, flows []FlowCompletion) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(flowReportHeader); err != nil {
		return err
	}

	for _, f := range flows {
		err := cw.Write([]string{
			f.Flow,
			f.Dst,
			strconv.Itoa(f.Packets),
			strconv.FormatUint(f.Bytes, 10),
			strconv.Itoa(f.Reordered),
			strconv.FormatUint(uint64(f.Start), 10),
			strconv.FormatUint(uint64(f.End), 10),
			strconv.FormatInt(int64(f.FCT()), 10),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteFlowReportFile writes the flow report to the file at path, replacing
// its content.
func WriteFlowReportFile(path string, flows []FlowCompletion) (re error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()

	w := bufio.NewWriter(f)
	if err := WriteFlowReport(w, flows); err != nil {
		return err
	}

	return w.Flush()
}

// ReadFlowReport parses a report produced by WriteFlowReport.
func ReadFlowReport(r io.Reader) ([]FlowCompletion, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) < 1 {
		return nil, errors.New("flow report: no header found")
	}

	if len(rows[0]) != len(flowReportHeader) || rows[0][0] != flowReportHeader[0] {
		return nil, fmt.Errorf("flow report: unexpected header %v", rows[0])
	}

	flows := make([]FlowCompletion, 0, len(rows)-1)
	for i, row := range rows[1:] {
		f, err := parseFlowRow(row)
		if err != nil {
			return nil, fmt.Errorf("flow report: row %d: %w", i+2, err)
		}

		flows = append(flows, f)
	}

	return flows, nil
}

func parseFlowRow(row []string) (FlowCompletion, error) {
	f := FlowCompletion{Flow: row[0], Dst: row[1]}

	var err error
	var start, end uint64

	if f.Packets, err = strconv.Atoi(row[2]); err != nil {
		return f, err
	}

	if f.Bytes, err = strconv.ParseUint(row[3], 10, 64); err != nil {
		return f, err
	}

	if f.Reordered, err = strconv.Atoi(row[4]); err != nil {
		return f, err
	}

	if start, err = strconv.ParseUint(row[5], 10, 64); err != nil {
		return f, err
	}

	if end, err = strconv.ParseUint(row[6], 10, 64); err != nil {
		return f, err
	}

	if end < start {
		return f, fmt.Errorf("flow %s ends before it starts", f.Flow)
	}

	f.Start = sim.VTimeInPs(start)
	f.End = sim.VTimeInPs(end)

	return f, nil
}

// ReadFlowReportFile parses the flow report file at path.
func ReadFlowReportFile(path string) (flows []FlowCompletion, re error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()

	return ReadFlowReport(f)
}
