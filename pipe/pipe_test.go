package pipe

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
	"go.uber.org/mock/gomock"
)

type testPacket struct {
	id      string
	size    uint64
	sentOn  int
	onwards func()
}

func (p *testPacket) ID() string   { return p.id }
func (p *testPacket) Size() uint64 { return p.size }

func (p *testPacket) SendOn() {
	p.sentOn++
	if p.onwards != nil {
		p.onwards()
	}
}

type otherEvent struct {
	*sim.EventBase
}

var _ = Describe("Builder", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockScheduler
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockScheduler(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should name the pipe after its delay", func() {
		p, err := MakeBuilder().
			WithEngine(engine).
			WithDelay(10 * sim.Microsecond).
			Build("")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("pipe(10us)"))
		Expect(p.Delay()).To(Equal(10 * sim.Microsecond))
		Expect(p.Capacity()).To(Equal(DefaultInitialCapacity))
		Expect(p.InFlight()).To(Equal(0))

		p.ForceName("Pipe_Core_0_Agg_1")
		Expect(p.Name()).To(Equal("Pipe_Core_0_Agg_1"))
	})

	It("should truncate sub-microsecond delays in the default name", func() {
		p, err := MakeBuilder().
			WithEngine(engine).
			WithDelay(1500 * sim.Nanosecond).
			Build("")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("pipe(1us)"))
	})

	It("should reject a missing engine", func() {
		_, err := MakeBuilder().WithDelay(sim.Microsecond).Build("p")

		Expect(errors.Is(err, ErrNoEngine)).To(BeTrue())
	})

	It("should reject a negative delay", func() {
		_, err := MakeBuilder().
			WithEngine(engine).
			WithDelay(-sim.Nanosecond).
			Build("p")

		Expect(errors.Is(err, ErrNegativeDelay)).To(BeTrue())
	})

	It("should reject a capacity that is not a power of two", func() {
		for _, capacity := range []int{0, -4, 3, 12} {
			_, err := MakeBuilder().
				WithEngine(engine).
				WithInitialCapacity(capacity).
				Build("p")

			Expect(errors.Is(err, ErrBadCapacity)).To(BeTrue())
		}
	})

	It("should allow a zero delay", func() {
		p, err := MakeBuilder().WithEngine(engine).Build("")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("pipe(0us)"))
	})
})

var _ = Describe("Pipe", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockScheduler
		next     *MockPacketSink
		recorder *MockLinkRecorder
		p        *Comp
		now      sim.VTimeInPs
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockScheduler(mockCtrl)
		next = NewMockPacketSink(mockCtrl)
		recorder = NewMockLinkRecorder(mockCtrl)

		now = 0
		engine.EXPECT().CurrentTime().DoAndReturn(func() sim.VTimeInPs {
			return now
		}).AnyTimes()

		var err error
		p, err = MakeBuilder().
			WithEngine(engine).
			WithDelay(5).
			WithLedger(recorder).
			WithStrictChecks().
			Build("")
		Expect(err).NotTo(HaveOccurred())
		p.SetNext(next)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectSchedule := func(at sim.VTimeInPs) *gomock.Call {
		return engine.EXPECT().Schedule(gomock.Any()).Do(func(evt sim.Event) {
			Expect(evt.Time()).To(Equal(at))
			Expect(evt.Handler()).To(BeIdenticalTo(p))
		})
	}

	release := func() {
		now = p.release.time
		Expect(p.Handle(&p.release)).To(Succeed())
	}

	It("should arm the engine when the first packet arrives", func() {
		expectSchedule(5).Times(1)

		p.ReceivePacket(&testPacket{id: "a"})

		Expect(p.InFlight()).To(Equal(1))
		t, ok := p.NextReleaseTime()
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(sim.VTimeInPs(5)))
	})

	It("should not arm again while busy", func() {
		expectSchedule(5).Times(1)

		p.ReceivePacket(&testPacket{id: "a"})
		now = 1
		p.ReceivePacket(&testPacket{id: "b"})
		now = 3
		p.ReceivePacket(&testPacket{id: "c"})

		Expect(p.InFlight()).To(Equal(3))
	})

	It("should release in order and re-arm at the next release time", func() {
		a := &testPacket{id: "a", size: 100}
		b := &testPacket{id: "b", size: 200}

		expectSchedule(5)
		p.ReceivePacket(a)
		now = 1
		p.ReceivePacket(b)

		gomock.InOrder(
			next.EXPECT().ReceivePacket(a),
			expectSchedule(6),
		)
		release()
		Expect(p.InFlight()).To(Equal(1))

		next.EXPECT().ReceivePacket(b)
		release()
		Expect(p.InFlight()).To(Equal(0))
		Expect(p.armed).To(BeFalse())
	})

	It("should arm relative to the arrival after going idle", func() {
		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a"})

		next.EXPECT().ReceivePacket(gomock.Any())
		release()

		now = 20
		expectSchedule(25)
		p.ReceivePacket(&testPacket{id: "b"})
	})

	It("should let the packet send itself on without a next sink", func() {
		p.SetNext(nil)
		pkt := &testPacket{id: "a"}

		expectSchedule(5)
		p.ReceivePacket(pkt)
		release()

		Expect(pkt.sentOn).To(Equal(1))
	})

	It("should account bytes for a tracked node", func() {
		p.SetNode(network.NewNode("Switch_Core_0", network.RoleCore))

		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a", size: 1500})

		gomock.InOrder(
			recorder.EXPECT().Record("Switch_Core_0", uint64(1500)),
			next.EXPECT().ReceivePacket(gomock.Any()),
		)
		release()
	})

	It("should not account bytes for an untracked node", func() {
		p.SetNode(network.NewNode("Switch_Edge_0", network.RoleEdge))

		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a", size: 1500})

		recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
		next.EXPECT().ReceivePacket(gomock.Any())
		release()
	})

	It("should not account bytes without a node", func() {
		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a", size: 1500})

		recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
		next.EXPECT().ReceivePacket(gomock.Any())
		release()
	})

	It("should use the configured classifier", func() {
		p.classifier = network.NameClassifier{Substring: "Core"}
		p.SetNode(network.NewNode("Switch_Core_1", network.RoleHost))

		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a", size: 64})

		recorder.EXPECT().Record("Switch_Core_1", uint64(64))
		next.EXPECT().ReceivePacket(gomock.Any())
		release()
	})

	It("should panic on a release event while idle", func() {
		Expect(func() { _ = p.Handle(&p.release) }).To(Panic())
	})

	It("should ignore a release event while idle when not strict", func() {
		p.strict = false
		idle := 0
		p.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosPipeIdleDispatch {
				idle++
			}
		}))

		Expect(p.Handle(&p.release)).To(Succeed())
		Expect(idle).To(Equal(1))
	})

	It("should panic on an early release event", func() {
		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a"})

		now = 2
		Expect(func() { _ = p.Handle(&releaseEvent{time: 2, pipe: p}) }).
			To(Panic())
	})

	It("should re-arm on an early release event when not strict", func() {
		p.strict = false

		expectSchedule(5)
		p.ReceivePacket(&testPacket{id: "a"})

		now = 2
		expectSchedule(5)
		Expect(p.Handle(&releaseEvent{time: 2, pipe: p})).To(Succeed())
		Expect(p.InFlight()).To(Equal(1))
	})

	It("should reject unknown events", func() {
		err := p.Handle(otherEvent{sim.NewEventBase(0, p)})

		Expect(err).To(HaveOccurred())
	})

	It("should arm once when a released packet loops back", func() {
		p.SetNext(nil)
		pkt := &testPacket{id: "a"}
		loops := 0
		pkt.onwards = func() {
			if loops < 1 {
				loops++
				p.ReceivePacket(pkt)
			}
		}

		expectSchedule(5)
		p.ReceivePacket(pkt)

		expectSchedule(10).Times(1)
		release()
		Expect(p.InFlight()).To(Equal(1))

		release()
		Expect(p.InFlight()).To(Equal(0))
		Expect(pkt.sentOn).To(Equal(2))
	})

	It("should invoke hooks on arrival, growth and departure", func() {
		var positions []*sim.HookPos
		var transits []Transit
		var growth []Growth
		p.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			positions = append(positions, ctx.Pos)
			switch d := ctx.Detail.(type) {
			case Transit:
				transits = append(transits, d)
			case Growth:
				growth = append(growth, d)
			}
		}))

		expectSchedule(5)
		for i := 0; i < 16; i++ {
			p.ReceivePacket(&testPacket{id: "x"})
		}

		Expect(growth).To(Equal([]Growth{{OldCapacity: 16, NewCapacity: 32}}))
		Expect(positions[15]).To(Equal(HookPosPipeGrow))
		Expect(positions[16]).To(Equal(HookPosPipeArrive))

		next.EXPECT().ReceivePacket(gomock.Any())
		expectSchedule(5)
		release()

		Expect(positions[len(positions)-1]).To(Equal(HookPosPipeDepart))
		Expect(transits[len(transits)-1]).
			To(Equal(Transit{Arrival: 0, Release: 5}))
	})
})
