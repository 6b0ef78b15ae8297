package pipe

import (
	"bytes"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// injectEvent hands a packet to a pipe at a given time.
type injectEvent struct {
	*sim.EventBase
	pkt *testPacket
}

type injector struct {
	pipe *Comp
}

func (i *injector) Handle(evt sim.Event) error {
	i.pipe.ReceivePacket(evt.(injectEvent).pkt)
	return nil
}

type departure struct {
	id   string
	time sim.VTimeInPs
}

type recordingSink struct {
	engine     sim.TimeTeller
	departures []departure
}

func (s *recordingSink) Name() string { return "sink" }

func (s *recordingSink) ReceivePacket(pkt network.Packet) {
	s.departures = append(s.departures,
		departure{id: pkt.ID(), time: s.engine.CurrentTime()})
}

// countingScheduler checks that a pipe never has more than one release event
// outstanding.
type countingScheduler struct {
	*sim.SerialEngine
	pipe        *Comp
	arms        int
	outstanding int
}

func (s *countingScheduler) Schedule(evt sim.Event) {
	if evt.Handler() == sim.Handler(s.pipe) {
		s.arms++
		s.outstanding++
		Expect(s.outstanding).To(Equal(1))
	}

	s.SerialEngine.Schedule(evt)
}

var _ = Describe("Pipe on a serial engine", func() {
	var (
		engine    *sim.SerialEngine
		scheduler *countingScheduler
		sink      *recordingSink
		links     *ledger.Ledger
		p         *Comp
		inj       *injector
	)

	build := func(delay sim.Duration) {
		var err error
		p, err = MakeBuilder().
			WithEngine(scheduler).
			WithDelay(delay).
			WithLedger(links).
			WithStrictChecks().
			Build("")
		Expect(err).NotTo(HaveOccurred())

		p.SetNext(sink)
		scheduler.pipe = p
		inj = &injector{pipe: p}

		engine.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos != sim.HookPosBeforeEvent {
				return
			}
			if ctx.Item.(sim.Event).Handler() == sim.Handler(p) {
				scheduler.outstanding--
			}
		}))
	}

	inject := func(at sim.VTimeInPs, pkt *testPacket) {
		engine.Schedule(injectEvent{sim.NewEventBase(at, inj), pkt})
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		scheduler = &countingScheduler{SerialEngine: engine}
		sink = &recordingSink{engine: engine}
		links = ledger.New()
	})

	It("should run the two packet example", func() {
		build(5 * sim.Microsecond)
		p.SetNode(network.NewNode("Switch_Core_0", network.RoleCore))

		inject(0, &testPacket{id: "A", size: 100})
		inject(sim.VTimeInPs(sim.Microsecond), &testPacket{id: "B", size: 200})

		Expect(engine.Run()).To(Succeed())

		Expect(sink.departures).To(Equal([]departure{
			{id: "A", time: sim.VTimeInPs(5 * sim.Microsecond)},
			{id: "B", time: sim.VTimeInPs(6 * sim.Microsecond)},
		}))
		Expect(scheduler.arms).To(Equal(2))

		total, ok := links.Total("Switch_Core_0")
		Expect(ok).To(BeTrue())
		Expect(total).To(Equal(uint64(300)))
	})

	It("should report release times through the engine clock", func() {
		build(5 * sim.Microsecond)

		var clock, eventTimes []sim.VTimeInPs
		engine.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos != sim.HookPosAfterEvent {
				return
			}

			evt := ctx.Item.(sim.Event)
			if evt.Handler() != sim.Handler(p) {
				return
			}

			clock = append(clock, engine.CurrentTime())
			eventTimes = append(eventTimes, evt.Time())
		}))

		inject(0, &testPacket{id: "A", size: 100})
		inject(sim.VTimeInPs(sim.Microsecond), &testPacket{id: "B", size: 200})

		Expect(engine.Run()).To(Succeed())

		Expect(clock).To(Equal([]sim.VTimeInPs{
			sim.VTimeInPs(5 * sim.Microsecond),
			sim.VTimeInPs(6 * sim.Microsecond),
		}))
		// The release event is reused, so after the first release it already
		// points at the second one.
		Expect(eventTimes[0]).To(Equal(sim.VTimeInPs(6 * sim.Microsecond)))
	})

	It("should not touch the ledger for untracked nodes", func() {
		build(5)
		p.SetNode(network.NewNode("Switch_Edge_0", network.RoleEdge))

		inject(0, &testPacket{id: "A", size: 100})
		Expect(engine.Run()).To(Succeed())

		Expect(links.Links()).To(BeEmpty())
		var buf bytes.Buffer
		Expect(links.Emit(&buf)).To(Succeed())
		Expect(buf.String()).To(Equal("link_name,total_bytes\n"))
	})

	It("should arm once per idle to busy transition", func() {
		build(10)

		inject(0, &testPacket{id: "a"})
		inject(3, &testPacket{id: "b"})
		inject(100, &testPacket{id: "c"})
		inject(200, &testPacket{id: "d"})
		inject(205, &testPacket{id: "e"})

		Expect(engine.Run()).To(Succeed())

		// a arms, b re-arms after a, c arms, d arms, e re-arms after d.
		Expect(scheduler.arms).To(Equal(5))
		Expect(scheduler.outstanding).To(Equal(0))
		Expect(p.InFlight()).To(Equal(0))
	})

	for _, seed := range []int64{7, 11, 13, 17} {
		seed := seed
		It("should release every packet in order at arrival plus delay", func() {
			const delay = 250
			build(delay)

			r := rand.New(rand.NewSource(seed))
			arrival := map[string]sim.VTimeInPs{}
			var order []string
			now := sim.VTimeInPs(0)

			for i := 0; i < 2000; i++ {
				// Bursts make the ring grow well past its initial capacity.
				if r.Intn(20) == 0 {
					now += sim.VTimeInPs(r.Intn(2 * delay))
				}
				id := string(rune('a'+i%26)) + "-" + sim.GetIDGenerator().Generate()
				arrival[id] = now
				order = append(order, id)
				inject(now, &testPacket{id: id, size: uint64(r.Intn(1500) + 1)})
			}

			Expect(engine.Run()).To(Succeed())

			Expect(sink.departures).To(HaveLen(len(order)))
			for i, d := range sink.departures {
				Expect(d.id).To(Equal(order[i]))
				Expect(d.time).To(Equal(arrival[d.id] + delay))
			}
			Expect(p.Capacity()).To(BeNumerically(">", DefaultInitialCapacity))
			Expect(scheduler.outstanding).To(Equal(0))
		})
	}
})
