package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sampleComponent struct {
	name  string
	Count int
}

func (c *sampleComponent) Name() string {
	return c.name
}

func (c *sampleComponent) Snapshot() any {
	return map[string]int{"Count": c.Count}
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		server *httptest.Server
	)

	get := func(path string) (int, []byte) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())

		return rsp.StatusCode, body
	}

	BeforeEach(func() {
		m = NewMonitor()
		m.profileDuration = 10 * time.Millisecond
		server = httptest.NewServer(m.router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should refuse privileged ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(BeZero())
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should list components", func() {
		m.RegisterComponent(&sampleComponent{name: "Core[0]"})
		m.RegisterComponent(&sampleComponent{name: "Bus"})

		status, body := get("/api/list_components")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`["Core[0]","Bus"]`))
	})

	It("should not register a name twice", func() {
		m.RegisterComponent(&sampleComponent{name: "Bus"})

		Expect(func() {
			m.RegisterComponent(&sampleComponent{name: "Bus"})
		}).To(Panic())
	})

	It("should serialize a component snapshot", func() {
		m.RegisterComponent(&sampleComponent{name: "Bus", Count: 7})

		status, body := get("/api/component/Bus")

		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("7"))
	})

	It("should answer 404 for an unknown component", func() {
		status, _ := get("/api/component/Nothing")

		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("should report progress", func() {
		bar := m.CreateProgressBar("Core[0]", 10)
		bar.IncrementFinished(4)
		done := m.CreateProgressBar("Core[1]", 1)
		m.CompleteProgressBar(done)

		status, body := get("/api/progress")
		Expect(status).To(Equal(http.StatusOK))

		var bars []progressBarRsp
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Core[0]"))
		Expect(bars[0].Finished).To(Equal(uint64(4)))
		Expect(bars[0].Total).To(Equal(uint64(10)))
	})

	It("should report resources", func() {
		status, body := get("/api/resource")
		Expect(status).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(body, &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should collect a profile", func() {
		status, _ := get("/api/profile")

		Expect(status).To(Equal(http.StatusOK))
	})

	It("should serve the page", func() {
		status, body := get("/")

		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should start a server", func() {
		url := m.StartServer()

		Expect(url).To(HavePrefix("http://localhost:"))
	})
})
