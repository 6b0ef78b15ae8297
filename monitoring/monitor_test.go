package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/ledger"
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/pipe"
	"github.com/sarchlab/pipesim/sim"
)

var _ = Describe("Monitor", func() {
	var (
		engine *sim.SerialEngine
		l      *ledger.Ledger
		p      *pipe.Comp
		m      *Monitor
		server *httptest.Server
	)

	get := func(path string) (int, string) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())

		return rsp.StatusCode, string(body)
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		l = ledger.New()
		l.Record("Switch_Core_0", 300)
		l.Record("Switch_Core_1", 100)

		var err error
		p, err = pipe.MakeBuilder().
			WithEngine(engine).
			WithDelay(5 * sim.Microsecond).
			Build("Link_A")
		Expect(err).NotTo(HaveOccurred())

		dst := network.NewHost(network.NewNode("Host_0", network.RoleHost), engine)
		p.SetNext(dst)
		p.ReceivePacket(network.NewRoutedPacket("f", 64, network.Route{p}, 0))

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterLedger(l)
		m.RegisterPipe(p)

		server = httptest.NewServer(m.Handler())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should reject privileged ports", func() {
		Expect(NewMonitor().WithPortNumber(80).portNumber).To(Equal(0))
		Expect(NewMonitor().WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should report the current time", func() {
		code, body := get("/api/now")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"now":0}`))
	})

	It("should list pipes", func() {
		code, body := get("/api/list_pipes")
		Expect(code).To(Equal(http.StatusOK))

		var pipes []pipeRsp
		Expect(json.Unmarshal([]byte(body), &pipes)).To(Succeed())
		Expect(pipes).To(HaveLen(1))
		Expect(pipes[0].Name).To(Equal("Link_A"))
		Expect(pipes[0].InFlight).To(Equal(1))
		Expect(pipes[0].Capacity).To(Equal(pipe.DefaultInitialCapacity))
		Expect(pipes[0].NextRelease).To(Equal(uint64(5 * sim.Microsecond)))
	})

	It("should describe a pipe", func() {
		code, _ := get("/api/pipe/Link_A")
		Expect(code).To(Equal(http.StatusOK))

		code, body := get("/api/pipe/Link_B")
		Expect(code).To(Equal(http.StatusNotFound))
		Expect(body).To(Equal("Pipe not found"))
	})

	It("should reject malformed field requests", func() {
		code, _ := get("/api/field/notjson")
		Expect(code).To(Equal(http.StatusBadRequest))
	})

	It("should list links", func() {
		code, body := get("/api/links")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[
			{"link":"Switch_Core_0","bytes":300},
			{"link":"Switch_Core_1","bytes":100}
		]`))
	})

	It("should summarize links", func() {
		code, body := get("/api/links/summary")
		Expect(code).To(Equal(http.StatusOK))

		var s ledger.Summary
		Expect(json.Unmarshal([]byte(body), &s)).To(Succeed())
		Expect(s.Links).To(Equal(2))
		Expect(s.TotalBytes).To(Equal(uint64(400)))
		Expect(s.Max.Link).To(Equal("Switch_Core_0"))
	})

	It("should export metrics", func() {
		code, body := get("/metrics")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(
			`pipesim_link_bytes_total{link="Switch_Core_0"} 300`))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("packets", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		_, body := get("/api/progress")
		Expect(body).To(ContainSubstring(`"name":"packets"`))
		Expect(body).To(ContainSubstring(`"finished":2`))
		Expect(body).To(ContainSubstring(`"in_progress":1`))
		Expect(bar.Done()).To(BeFalse())

		m.CompleteProgressBar(bar)
		_, body = get("/api/progress")
		Expect(body).To(MatchJSON(`[]`))
	})

	It("should pause and continue the engine", func() {
		code, _ := get("/api/pause")
		Expect(code).To(Equal(http.StatusOK))

		code, _ = get("/api/continue")
		Expect(code).To(Equal(http.StatusOK))

		Expect(engine.Run()).To(Succeed())
		Expect(p.InFlight()).To(Equal(0))
	})

	It("should serve the dashboard", func() {
		code, body := get("/")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(HavePrefix("<!DOCTYPE html>"))
	})
})
