// Package monitoring serves the state of running MMUs over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/monitoring/web"
	"github.com/sarchlab/mmusim/report"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor turns a set of MMUs into a server and allows external inspection
// and driving of them. An MMU is not safe for concurrent use, so every
// request, and every caller of WithLock, holds the same lock.
type Monitor struct {
	lock        sync.Mutex
	components  []*mmu.Comp
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// The range of ports the monitor may listen on. Any other port is replaced
// with a random one.
const (
	minPortNumber = 1000
	maxPortNumber = 65535
)

// WithPortNumber sets the port number of the monitor. Zero picks a random
// port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 &&
		(portNumber < minPortNumber || portNumber > maxPortNumber) {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitoring page in a browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterComponent registers an MMU to be monitored.
func (m *Monitor) RegisterComponent(c *mmu.Comp) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.components = append(m.components, c)
}

// WithLock runs f while no request is being served.
func (m *Monitor) WithLock(f func()) {
	m.lock.Lock()
	defer m.lock.Unlock()

	f()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/stats/{name}", m.stats)
	r.HandleFunc("/api/reset_stats/{name}", m.resetStats)
	r.HandleFunc("/api/tlb/{name}", m.tlbEntries)
	r.HandleFunc("/api/l1/{name}", m.cacheLines)
	r.HandleFunc("/api/invalidate/{name}/{cache}", m.invalidate)
	r.HandleFunc("/api/pagetable/{name}", m.pageTable)
	r.HandleFunc("/api/pagemap/{name}", m.pageMap)
	r.HandleFunc("/api/read/{name}/{addr}", m.read)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the URL it
// listens on.
func (m *Monitor) StartServer() string {
	listener, err := net.Listen("tcp", m.listenAddr())
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	r := m.router()

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %s\n", err)
		}
	}

	return url
}

func (m *Monitor) listenAddr() string {
	return ":" + strconv.Itoa(m.portNumber)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) stats(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	writeJSON(w, component.Stats())
}

func (m *Monitor) resetStats(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	component.ResetStats()
	writeJSON(w, component.Stats())
}

type tlbEntryRsp struct {
	VPN         string `json:"vpn"`
	Frame       uint64 `json:"frame"`
	AccessCount uint64 `json:"access_count"`
}

func (m *Monitor) tlbEntries(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	rsp := []tlbEntryRsp{}
	for _, e := range component.TLBEntries() {
		rsp = append(rsp, tlbEntryRsp{
			VPN:         e.VPN.String(),
			Frame:       uint64(e.Frame),
			AccessCount: e.AccessCount,
		})
	}

	writeJSON(w, rsp)
}

type cacheLineRsp struct {
	Addr        string `json:"addr"`
	Set         int    `json:"set"`
	Way         int    `json:"way"`
	AccessCount uint64 `json:"access_count"`
}

func (m *Monitor) cacheLines(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	rsp := []cacheLineRsp{}
	for _, l := range component.CacheLines() {
		rsp = append(rsp, cacheLineRsp{
			Addr:        l.Addr.String(),
			Set:         l.SetID,
			Way:         l.WayID,
			AccessCount: l.AccessCount,
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) invalidate(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	switch mux.Vars(r)["cache"] {
	case "tlb":
		component.InvalidateTLB()
	case "l1":
		component.InvalidateCache()
	default:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: cache must be `tlb` or `l1`")

		return
	}

	w.WriteHeader(http.StatusOK)
}

type pageTableRsp struct {
	Root       uint64         `json:"root"`
	NumEntries int            `json:"num_entries"`
	Tables     []pageTableRow `json:"tables"`
}

type pageTableRow struct {
	Frame   uint64     `json:"frame"`
	Entries []vm.PTE `json:"entries"`
}

func (m *Monitor) pageTable(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	pt := component.PageTable()
	rsp := pageTableRsp{
		Root:       uint64(component.Root()),
		NumEntries: pt.NumEntries(),
		Tables:     []pageTableRow{},
	}

	for _, f := range pt.Tables() {
		rsp.Tables = append(rsp.Tables, pageTableRow{
			Frame:   uint64(f),
			Entries: pt.Entries(f),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) pageMap(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := fmt.Fprint(w,
		report.PageMap(component.PageTable(), component.Root()))
	dieOnErr(err)
}

type readRsp struct {
	VAddr  string    `json:"vaddr"`
	PAddr  string    `json:"paddr,omitempty"`
	Fault  bool      `json:"fault"`
	Detail string    `json:"detail,omitempty"`
	Stats  mmu.Stats `json:"stats"`
}

func (m *Monitor) read(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	vAddr, err := vm.ParseVAddr(mux.Vars(r)["addr"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	rsp := readRsp{VAddr: vAddr.String()}

	pAddr, err := component.Read(vAddr)
	switch {
	case err == nil:
		rsp.PAddr = pAddr.String()
	case errors.Is(err, vm.ErrPageFault):
		rsp.Fault = true
		rsp.Detail = err.Error()
	default:
		dieOnErr(err)
	}

	rsp.Stats = component.Stats()

	writeJSON(w, rsp)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) *mmu.Comp {
	var component *mmu.Comp
	for _, c := range m.components {
		if c.Name() == name {
			component = c
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
