package ledger

import (
	"gonum.org/v1/gonum/stat"
)

// Summary describes how evenly traffic is spread over the links of a ledger.
// Utilization is normalized by the mean byte count, so a perfectly balanced
// network has a StdDev and Variance of zero.
type Summary struct {
	Links      int     `json:"links"`
	TotalBytes uint64  `json:"total_bytes"`
	MeanBytes  float64 `json:"mean_bytes"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Variance   float64 `json:"variance"`
	Min        Entry   `json:"min"`
	Max        Entry   `json:"max"`
}

// Summarize computes the utilization summary of the ledger. StdDev and
// Variance are sample statistics and are zero for fewer than two links.
func (l *Ledger) Summarize() Summary {
	entries := l.Snapshot()

	s := Summary{Links: len(entries)}
	if len(entries) == 0 {
		return s
	}

	raw := make([]float64, len(entries))
	s.Min, s.Max = entries[0], entries[0]
	for i, e := range entries {
		raw[i] = float64(e.Bytes)
		s.TotalBytes += e.Bytes

		if e.Bytes < s.Min.Bytes {
			s.Min = e
		}
		if e.Bytes > s.Max.Bytes {
			s.Max = e
		}
	}

	s.MeanBytes = stat.Mean(raw, nil)
	if s.MeanBytes == 0 {
		return s
	}

	normalized := make([]float64, len(raw))
	for i, v := range raw {
		normalized[i] = v / s.MeanBytes
	}

	s.Mean = stat.Mean(normalized, nil)
	if len(normalized) > 1 {
		s.Variance = stat.Variance(normalized, nil)
		s.StdDev = stat.StdDev(normalized, nil)
	}

	return s
}
