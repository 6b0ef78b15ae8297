package pipe

import (
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// delayRecord is a packet in flight together with the time it leaves.
type delayRecord struct {
	releaseTime sim.VTimeInPs
	pkt         network.Packet
}

// delayQueue is a FIFO ring of delay records. The capacity is always a power
// of two and doubles when the queue fills up, so that pushes and pops are
// amortized O(1) and do not allocate in the steady state.
type delayQueue struct {
	records []delayRecord
	head    int
	tail    int
	count   int
}

func newDelayQueue(capacity int) delayQueue {
	return delayQueue{records: make([]delayRecord, capacity)}
}

func (q *delayQueue) len() int {
	return q.count
}

func (q *delayQueue) capacity() int {
	return len(q.records)
}

// push appends a record. It returns the previous capacity if the ring had to
// grow, and 0 otherwise.
func (q *delayQueue) push(rec delayRecord) (grewFrom int) {
	if q.count+1 == len(q.records) {
		grewFrom = q.grow()
	}

	q.records[q.tail] = rec
	q.tail = (q.tail + 1) & (len(q.records) - 1)
	q.count++

	return grewFrom
}

// grow doubles the ring. When the live records wrap around the end of the
// old buffer, the wrapped prefix records[0:tail) is moved right behind the
// old end so the sequence stays contiguous modulo the new capacity. Records
// keep their offset from head.
func (q *delayQueue) grow() int {
	oldCap := len(q.records)

	records := make([]delayRecord, 2*oldCap)
	copy(records, q.records)

	if q.tail < q.head {
		copy(records[oldCap:oldCap+q.tail], records[:q.tail])
		clear(records[:q.tail])
		q.tail += oldCap
	}

	q.records = records

	return oldCap
}

func (q *delayQueue) peek() (delayRecord, bool) {
	if q.count == 0 {
		return delayRecord{}, false
	}

	return q.records[q.head], true
}

func (q *delayQueue) pop() (delayRecord, bool) {
	if q.count == 0 {
		return delayRecord{}, false
	}

	rec := q.records[q.head]
	q.records[q.head] = delayRecord{}
	q.head = (q.head + 1) & (len(q.records) - 1)
	q.count--

	return rec, true
}
