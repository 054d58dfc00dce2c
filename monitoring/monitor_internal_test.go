package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mmusim/mem/vm/mmu"
)

var _ = Describe("Monitor", func() {
	var (
		m    *Monitor
		comp *mmu.Comp
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		comp = mmu.MakeBuilder().Build("MMU")

		frame := comp.Root()
		for i := 0; i < 4; i++ {
			next := comp.NextFrame()
			Expect(comp.MapPage(frame, 0, next)).To(Succeed())
			frame = next
		}

		m.RegisterComponent(comp)
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`["MMU"]`))
	})

	It("should return 404 for unknown components", func() {
		rec := get("/api/stats/CPU")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should read through the MMU", func() {
		rec := get("/api/read/MMU/0x40")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp readRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.VAddr).To(Equal("V0x40"))
		Expect(rsp.PAddr).To(Equal("P0x68040"))
		Expect(rsp.Fault).To(BeFalse())
		Expect(rsp.Stats.TLB.Miss).To(Equal(uint64(1)))
		Expect(comp.Stats().L1.Miss).To(Equal(uint64(1)))
	})

	It("should report faults", func() {
		rec := get("/api/read/MMU/0x8000000000")

		var rsp readRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Fault).To(BeTrue())
		Expect(rsp.PAddr).To(BeEmpty())
		Expect(rsp.Stats.PageFaults).To(Equal(uint64(1)))
	})

	It("should reject bad addresses", func() {
		rec := get("/api/read/MMU/nowhere")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve the counters", func() {
		_, _ = comp.Read(0)
		_, _ = comp.Read(0)

		rec := get("/api/stats/MMU")

		Expect(rec.Body.String()).To(Equal(
			`{"tlb":{"hit":1,"miss":1},"l1":{"hit":1,"miss":1},"page_faults":0}`))
	})

	It("should reset the counters", func() {
		_, _ = comp.Read(0)

		get("/api/reset_stats/MMU")

		Expect(comp.Stats()).To(Equal(mmu.Stats{}))
	})

	It("should serve the caches", func() {
		_, _ = comp.Read(0x80)

		var entries []tlbEntryRsp
		Expect(json.Unmarshal(get("/api/tlb/MMU").Body.Bytes(), &entries)).
			To(Succeed())
		Expect(entries).To(Equal([]tlbEntryRsp{
			{VPN: "V0x0", Frame: 104, AccessCount: 1},
		}))

		var lines []cacheLineRsp
		Expect(json.Unmarshal(get("/api/l1/MMU").Body.Bytes(), &lines)).
			To(Succeed())
		Expect(lines).To(HaveLen(1))
		Expect(lines[0].Addr).To(Equal("P0x68080"))
		Expect(lines[0].Set).To(Equal(2))
	})

	It("should invalidate the caches", func() {
		_, _ = comp.Read(0)

		Expect(get("/api/invalidate/MMU/tlb").Code).To(Equal(http.StatusOK))
		Expect(get("/api/invalidate/MMU/l1").Code).To(Equal(http.StatusOK))
		Expect(get("/api/invalidate/MMU/l2").Code).
			To(Equal(http.StatusBadRequest))

		Expect(comp.TLBEntries()).To(BeEmpty())
		Expect(comp.CacheLines()).To(BeEmpty())
	})

	It("should serve the page table", func() {
		var rsp pageTableRsp
		Expect(json.Unmarshal(get("/api/pagetable/MMU").Body.Bytes(), &rsp)).
			To(Succeed())

		Expect(rsp.Root).To(Equal(uint64(100)))
		Expect(rsp.NumEntries).To(Equal(4))
		Expect(rsp.Tables).To(HaveLen(4))
		Expect(rsp.Tables[3].Frame).To(Equal(uint64(103)))
		Expect(rsp.Tables[3].Entries[0].Frame).To(BeEquivalentTo(104))
	})

	It("should serve the page map as text", func() {
		rec := get("/api/pagemap/MMU")

		Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
		Expect(rec.Body.String()).To(ContainSubstring(
			" |  |  | 000: V0x0 -> P0x68000\n"))
	})

	It("should serialize the component", func() {
		rec := get("/api/component/MMU")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Valid(rec.Body.Bytes())).To(BeTrue())
	})

	It("should serve the page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should serve resources", func() {
		var rsp resourceRsp
		Expect(json.Unmarshal(get("/api/resource").Body.Bytes(), &rsp)).
			To(Succeed())

		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Stride", 100)
		bar.IncrementInProgress(10)
		bar.MoveInProgressToFinished(4)

		var bars []progressBarRsp
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Stride"))
		Expect(bars[0].InProgress).To(Equal(uint64(6)))
		Expect(bars[0].Finished).To(Equal(uint64(4)))
		Expect(bars[0].Total).To(Equal(uint64(100)))
		Expect(bar.Done()).To(BeFalse())

		bar.MoveInProgressToFinished(50)
		bar.IncrementFinished(90)
		Expect(bar.Done()).To(BeTrue())

		m.CompleteProgressBar(bar)
		Expect(get("/api/progress").Body.String()).To(Equal("[]"))
	})

	It("should run work under the lock", func() {
		ran := false
		m.WithLock(func() { ran = true })

		Expect(ran).To(BeTrue())
	})

	DescribeTable("should listen on the accepted ports only",
		func(port int, addr string) {
			Expect(m.WithPortNumber(port).listenAddr()).To(Equal(addr))
		},
		Entry("random", 0, ":0"),
		Entry("privileged", 80, ":0"),
		Entry("just below the range", 999, ":0"),
		Entry("first in the range", 1000, ":1000"),
		Entry("common", 8080, ":8080"),
		Entry("last in the range", 65535, ":65535"),
		Entry("out of range", 70000, ":0"),
		Entry("negative", -1, ":0"),
	)
})
