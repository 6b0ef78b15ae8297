package simulation

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/pipesim/datarecording"
	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/sim"
)

// SnapshotTable is the table snapshots are recorded into.
const SnapshotTable = "link_utilization"

type snapshotEntry struct {
	TimePs uint64
	Link   string
	Bytes  uint64
}

// SnapshotHook is an engine hook that periodically captures the ledger. A
// snapshot is taken after the first event at or past each multiple of the
// interval.
type SnapshotHook struct {
	ledger   *ledger.Ledger
	interval sim.Duration
	next     sim.VTimeInPs

	recorder datarecording.DataRecorder
	path     string

	taken int
}

// NewSnapshotHook creates a hook that captures the ledger every interval of
// simulated time.
func NewSnapshotHook(l *ledger.Ledger, interval sim.Duration) *SnapshotHook {
	if interval <= 0 {
		panic(fmt.Sprintf("snapshot interval must be positive, got %s", interval))
	}

	return &SnapshotHook{
		ledger:   l,
		interval: interval,
		next:     sim.VTimeInPs(0).Add(interval),
	}
}

// WithRecorder makes the hook insert every snapshot into the recorder.
func (h *SnapshotHook) WithRecorder(r datarecording.DataRecorder) *SnapshotHook {
	r.CreateTable(SnapshotTable, snapshotEntry{})
	h.recorder = r

	return h
}

// WithFile makes the hook rewrite the report file on every snapshot.
func (h *SnapshotHook) WithFile(path string) *SnapshotHook {
	h.path = path
	return h
}

// Taken returns the number of snapshots taken so far.
func (h *SnapshotHook) Taken() int {
	return h.taken
}

// Func captures the ledger when a snapshot is due.
func (h *SnapshotHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	// Events may be rescheduled by their handler, so the event time is not
	// reliable after the event ran.
	engine, ok := ctx.Domain.(sim.TimeTeller)
	if !ok {
		return
	}

	now := engine.CurrentTime()
	if now < h.next {
		return
	}

	h.Take(now)

	for h.next <= now {
		h.next = h.next.Add(h.interval)
	}
}

// Take captures the ledger immediately.
func (h *SnapshotHook) Take(now sim.VTimeInPs) {
	h.taken++

	if h.recorder != nil {
		for _, e := range h.ledger.Snapshot() {
			h.recorder.InsertData(SnapshotTable, snapshotEntry{
				TimePs: uint64(now),
				Link:   e.Link,
				Bytes:  e.Bytes,
			})
		}
	}

	if h.path != "" {
		if err := h.ledger.WriteFile(h.path); err != nil {
			log.WithError(err).WithField("file", h.path).
				Error("failed to write snapshot")
		}
	}

	log.WithFields(log.Fields{
		"sim_time": now.String(),
		"links":    len(h.ledger.Links()),
	}).Debug("ledger snapshot")
}

// EnableSnapshots attaches a SnapshotHook to the engine of the simulation.
// Snapshots go to the data recorder when recording is on and to the report
// path otherwise.
func (s *Simulation) EnableSnapshots(interval sim.Duration) *SnapshotHook {
	h := NewSnapshotHook(s.ledger, interval)

	if s.dataRecorder != nil {
		h.WithRecorder(s.dataRecorder)
	} else if s.reportPath != "" {
		h.WithFile(s.reportPath)
	}

	s.engine.AcceptHook(h)

	return h
}
