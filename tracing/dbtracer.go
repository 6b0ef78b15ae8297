package tracing

import (
	"sync"

	"github.com/sarchlab/pipesim/datarecording"
)

// TransitTable is the name of the table DBTracer writes to.
const TransitTable = "pipe_transit"

type transitTableEntry struct {
	Pipe      string
	Packet    string
	Bytes     uint64
	ArrivalPs uint64
	ReleasePs uint64
}

// DBTracer stores every completed transit into a DataRecorder. Arrivals are
// not recorded since the release time of a transit is known in advance.
type DBTracer struct {
	mu       sync.Mutex
	backend  datarecording.DataRecorder
	recorded uint64
}

// NewDBTracer creates a DBTracer and the table it writes to.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	backend.CreateTable(TransitTable, transitTableEntry{})

	return &DBTracer{backend: backend}
}

// Arrive does nothing.
func (t *DBTracer) Arrive(TransitRecord) {}

// Depart stores the transit.
func (t *DBTracer) Depart(rec TransitRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(TransitTable, transitTableEntry{
		Pipe:      rec.Pipe,
		Packet:    rec.Packet,
		Bytes:     rec.Bytes,
		ArrivalPs: uint64(rec.Arrival),
		ReleasePs: uint64(rec.Release),
	})
	t.recorded++
}

// Recorded returns the number of transits stored.
func (t *DBTracer) Recorded() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.recorded
}
