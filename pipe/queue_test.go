package pipe

import (
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pipesim/sim"
)

func recordAt(t int) delayRecord {
	return delayRecord{releaseTime: sim.VTimeInPs(t)}
}

func drainTimes(q *delayQueue) []sim.VTimeInPs {
	var times []sim.VTimeInPs
	for {
		rec, ok := q.pop()
		if !ok {
			return times
		}
		times = append(times, rec.releaseTime)
	}
}

var _ = Describe("delayQueue", func() {
	var q delayQueue

	BeforeEach(func() {
		q = newDelayQueue(16)
	})

	It("should be empty when created", func() {
		Expect(q.len()).To(Equal(0))
		Expect(q.capacity()).To(Equal(16))

		_, ok := q.peek()
		Expect(ok).To(BeFalse())

		_, ok = q.pop()
		Expect(ok).To(BeFalse())
	})

	It("should double exactly once when filled up to its capacity", func() {
		grows := 0
		for i := 0; i < 16; i++ {
			if q.push(recordAt(i)) > 0 {
				grows++
			}
		}

		Expect(grows).To(Equal(1))
		Expect(q.capacity()).To(Equal(32))
		Expect(q.len()).To(Equal(16))
		Expect(q.head).To(Equal(0))
		Expect(q.tail).To(Equal(16))

		expected := make([]sim.VTimeInPs, 16)
		for i := range expected {
			expected[i] = sim.VTimeInPs(i)
		}
		Expect(drainTimes(&q)).To(Equal(expected))
	})

	It("should relocate only the wrapped prefix when growing", func() {
		for i := 0; i < 10; i++ {
			q.push(recordAt(i))
		}
		for i := 0; i < 8; i++ {
			q.pop()
		}
		Expect(q.head).To(Equal(8))
		Expect(q.tail).To(Equal(10))

		for i := 10; i < 23; i++ {
			Expect(q.push(recordAt(i))).To(Equal(0))
		}
		Expect(q.len()).To(Equal(15))
		Expect(q.tail).To(Equal(7))
		Expect(q.tail).To(BeNumerically("<", q.head))

		before := make([]delayRecord, 16)
		copy(before, q.records)

		Expect(q.push(recordAt(23))).To(Equal(16))

		Expect(q.capacity()).To(Equal(32))
		Expect(q.head).To(Equal(8))
		Expect(q.tail).To(Equal(24))
		Expect(q.records[8:16]).To(Equal(before[8:16]))
		Expect(q.records[16:23]).To(Equal(before[0:7]))
		for i := 0; i < 7; i++ {
			Expect(q.records[i]).To(Equal(delayRecord{}))
		}

		expected := make([]sim.VTimeInPs, 0, 16)
		for i := 8; i < 24; i++ {
			expected = append(expected, sim.VTimeInPs(i))
		}
		Expect(drainTimes(&q)).To(Equal(expected))
	})

	It("should keep working from a capacity of one", func() {
		q = newDelayQueue(1)

		Expect(q.push(recordAt(1))).To(Equal(1))
		Expect(q.push(recordAt(2))).To(Equal(2))
		Expect(q.push(recordAt(3))).To(Equal(0))
		Expect(q.push(recordAt(4))).To(Equal(4))

		Expect(drainTimes(&q)).To(Equal([]sim.VTimeInPs{1, 2, 3, 4}))
	})

	It("should not hold packets after they are popped", func() {
		q.push(delayRecord{releaseTime: 1, pkt: &testPacket{id: "a"}})
		q.pop()

		Expect(q.records[0].pkt).To(BeNil())
	})

	for _, seed := range []int{1, 2, 3, 4, 5} {
		It("should preserve FIFO order across growth, seed "+strconv.Itoa(seed), func() {
			q = newDelayQueue(2)
			next, expect := 0, 0
			state := uint32(seed)

			for step := 0; step < 5000; step++ {
				state = state*1664525 + 1013904223
				if state%3 != 0 {
					q.push(recordAt(next))
					next++
				} else if rec, ok := q.pop(); ok {
					Expect(rec.releaseTime).To(Equal(sim.VTimeInPs(expect)))
					expect++
				}

				Expect(q.len()).To(Equal(next - expect))
				Expect((q.tail - q.head + q.capacity()) % q.capacity()).
					To(Equal(q.len() % q.capacity()))
			}

			for _, t := range drainTimes(&q) {
				Expect(t).To(Equal(sim.VTimeInPs(expect)))
				expect++
			}
			Expect(expect).To(Equal(next))
		})
	}
})
