// Package monitoring turns a running verification session into a web server
// so the run can be inspected and controlled from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/scheduler"
)

// Controllable is implemented by kernels whose event loop can be paused from
// another goroutine.
type Controllable interface {
	Pause()
	Continue()
}

// Monitor exposes a verification session as a web server.
type Monitor struct {
	s          *scheduler.Scheduler
	k          kernel.Kernel
	portNumber int
	useBrowser bool

	server *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in the default
// browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.useBrowser = true
	return m
}

// RegisterScheduler registers the scheduler that runs the session.
func (m *Monitor) RegisterScheduler(s *scheduler.Scheduler) {
	m.s = s
	m.k = s.Kernel()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        scheduler.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the webpage.
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

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseKernel)
	r.HandleFunc("/api/continue", m.continueKernel)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/tasks", m.listTasks)
	r.HandleFunc("/api/task/{id}", m.listTaskDetails)
	r.HandleFunc("/api/signal/{path}", m.readSignal)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)
	fmt.Fprintf(os.Stderr, "Monitoring verification run with %s\n", url)

	m.server = &http.Server{Handler: r}
	go func() {
		serveErr := m.server.Serve(listener)
		if serveErr != http.ErrServerClosed {
			dieOnErr(serveErr)
		}
	}()

	if m.useBrowser {
		_ = browser.OpenURL(url)
	}
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer() {
	if m.server != nil {
		_ = m.server.Close()
		m.server = nil
	}
}

func (m *Monitor) pauseKernel(w http.ResponseWriter, _ *http.Request) {
	c, ok := m.k.(Controllable)
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	c.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueKernel(w http.ResponseWriter, _ *http.Request) {
	c, ok := m.k.(Controllable)
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	c.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%d,\"unit\":\"%s\"}",
		m.k.CurrentTime(), m.k.Precision())
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.s.RunUntilIdle()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		}
	}()
}

type taskRsp struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Awaiting string `json:"awaiting,omitempty"`
	Error    string `json:"error,omitempty"`
}

func taskToRsp(t *scheduler.Task) taskRsp {
	rsp := taskRsp{
		ID:    t.ID(),
		Name:  t.Name(),
		State: t.State().String(),
	}
	if tr := t.Awaiting(); tr != nil {
		rsp.Awaiting = tr.String()
	}
	if err := t.Err(); err != nil {
		rsp.Error = err.Error()
	}

	return rsp
}

func (m *Monitor) listTasks(w http.ResponseWriter, _ *http.Request) {
	tasks := m.s.Tasks()

	rsps := make([]taskRsp, 0, len(tasks))
	for _, t := range tasks {
		rsps = append(rsps, taskToRsp(t))
	}

	bytes, err := json.Marshal(rsps)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listTaskDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	for _, t := range m.s.Tasks() {
		if t.ID() != id {
			continue
		}

		bytes, err := json.Marshal(taskToRsp(t))
		dieOnErr(err)

		_, err = w.Write(bytes)
		dieOnErr(err)

		return
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Task not found"))
	dieOnErr(err)
}

func (m *Monitor) readSignal(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	obj, err := m.k.Lookup(path)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, writeErr := w.Write([]byte("Signal not found"))
		dieOnErr(writeErr)

		return
	}

	value, err := m.k.Read(obj)
	dieOnErr(err)

	width, err := m.k.Width(obj)
	dieOnErr(err)

	fmt.Fprintf(w, "{\"path\":\"%s\",\"value\":%d,\"width\":%d}",
		path, value, width)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
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

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
