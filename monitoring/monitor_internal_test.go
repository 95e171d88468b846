package monitoring

import (
	"encoding/json"
	"io"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gowinsim/sdramsim/sim"
)

type sampleComponent struct {
	name  string
	ticks int
}

func (c *sampleComponent) Name() string {
	return c.name
}

func (c *sampleComponent) Tick() bool {
	c.ticks++
	return true
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *sim.CycleEngine
		comp   *sampleComponent
	)

	BeforeEach(func() {
		m = NewMonitor()
		engine = sim.NewCycleEngine(100 * sim.MHz)
		comp = &sampleComponent{name: "Comp"}

		m.RegisterEngine(engine)
		m.RegisterComponent(comp)
	})

	It("should register components", func() {
		Expect(m.components).To(HaveLen(1))
	})

	It("should list components", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/list_components", nil)

		m.router().ServeHTTP(w, r)

		body, _ := io.ReadAll(w.Result().Body)
		Expect(string(body)).To(Equal(`["Comp"]`))
	})

	It("should report the current cycle", func() {
		engine.Run(3)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/now", nil)

		m.router().ServeHTTP(w, r)

		rsp := struct {
			Cycle uint64 `json:"cycle"`
		}{}
		body, _ := io.ReadAll(w.Result().Body)
		Expect(json.Unmarshal(body, &rsp)).To(Succeed())
		Expect(rsp.Cycle).To(Equal(uint64(3)))
	})

	It("should run the engine on request", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/run?cycles=5", nil)

		m.router().ServeHTTP(w, r)

		Expect(engine.CurrentCycle()).To(Equal(uint64(5)))
	})

	It("should reject an invalid cycle count", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/run?cycles=abc", nil)

		m.router().ServeHTTP(w, r)

		Expect(w.Result().StatusCode).To(Equal(400))
	})

	It("should tick a registered component", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/tick/Comp", nil)

		m.router().ServeHTTP(w, r)

		Expect(w.Result().StatusCode).To(Equal(200))
		Expect(comp.ticks).To(Equal(1))
	})

	It("should 404 on an unknown component", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/tick/Nobody", nil)

		m.router().ServeHTTP(w, r)

		Expect(w.Result().StatusCode).To(Equal(404))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("writes", 100)
		bar.IncrementInProgress(10)
		bar.MoveInProgressToFinished(4)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/progress", nil)

		m.router().ServeHTTP(w, r)

		bars := []ProgressBar{}
		body, _ := io.ReadAll(w.Result().Body)
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("writes"))
		Expect(bars[0].Finished).To(Equal(uint64(4)))
		Expect(bars[0].InProgress).To(Equal(uint64(6)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
