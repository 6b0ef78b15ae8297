package tracing

import (
	"sort"
	"sync"
)

// PipeStats are the totals a TransitCounter keeps for one pipe.
type PipeStats struct {
	Pipe       string
	Arrivals   uint64
	Departures uint64
	Bytes      uint64
	MaxInPipe  uint64
}

// InFlight returns the number of packets that arrived but have not departed.
func (s PipeStats) InFlight() uint64 {
	return s.Arrivals - s.Departures
}

// TransitCounter counts the packets and bytes that pass each pipe. One
// counter can observe many pipes.
type TransitCounter struct {
	lock  sync.Mutex
	pipes map[string]*PipeStats
}

// NewTransitCounter creates a new TransitCounter.
func NewTransitCounter() *TransitCounter {
	return &TransitCounter{pipes: make(map[string]*PipeStats)}
}

func (c *TransitCounter) stats(pipe string) *PipeStats {
	s, ok := c.pipes[pipe]
	if !ok {
		s = &PipeStats{Pipe: pipe}
		c.pipes[pipe] = s
	}

	return s
}

// Arrive counts a packet entering a pipe.
func (c *TransitCounter) Arrive(rec TransitRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	s := c.stats(rec.Pipe)
	s.Arrivals++

	if s.InFlight() > s.MaxInPipe {
		s.MaxInPipe = s.InFlight()
	}
}

// Depart counts a packet leaving a pipe.
func (c *TransitCounter) Depart(rec TransitRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	s := c.stats(rec.Pipe)
	s.Departures++
	s.Bytes += rec.Bytes
}

// Stats returns the totals of one pipe.
func (c *TransitCounter) Stats(pipe string) (PipeStats, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	s, ok := c.pipes[pipe]
	if !ok {
		return PipeStats{}, false
	}

	return *s, true
}

// All returns the totals of every observed pipe, sorted by pipe name.
func (c *TransitCounter) All() []PipeStats {
	c.lock.Lock()
	all := make([]PipeStats, 0, len(c.pipes))
	for _, s := range c.pipes {
		all = append(all, *s)
	}
	c.lock.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Pipe < all[j].Pipe })

	return all
}
