package runner

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tebeka/atexit"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/monitoring"
	"github.com/veritb/veritb/recording"
	"github.com/veritb/veritb/scheduler"
	"github.com/veritb/veritb/vtime"
)

// A TestResult reports the outcome of one test.
type TestResult struct {
	Name     string
	Passed   bool
	Err      error
	SimTime  vtime.Steps
	WallTime time.Duration
}

// A Runner executes registered tests sequentially, each on a fresh kernel
// and scheduler session.
type Runner struct {
	precision     vtime.Unit
	dutSetup      DUTSetupFunc
	registry      *Registry
	logger        *log.Logger
	taskLoggingOn bool
	recordingOn   bool
	recordingPath string
	monitorOn     bool
	monitorPort   int

	monitorStarted bool
}

// Run executes all registered tests and prints the summary table.
func (r *Runner) Run() []TestResult {
	tests := r.registry.Tests()

	var traceHook *recording.TraceHook
	var recorder recording.DataRecorder
	if r.recordingOn {
		recorder = recording.New(r.recordingPath)
		traceHook = recording.NewTraceHook(recorder)

		runRec := recording.NewRunRecorder(recorder)
		runRec.Record()
		runRec.AddProperty("Precision", r.precision.String())
		defer runRec.Flush()
	}

	var monitor *monitoring.Monitor
	var bar *monitoring.ProgressBar
	if r.monitorOn {
		monitor = monitoring.NewMonitor()
		if r.monitorPort > 0 {
			monitor.WithPortNumber(r.monitorPort)
		}
		bar = monitor.CreateProgressBar("regression", uint64(len(tests)))
	}

	results := make([]TestResult, 0, len(tests))
	for _, test := range tests {
		if bar != nil {
			bar.IncrementInProgress(1)
		}

		results = append(results, r.runTest(test, traceHook, monitor))

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}

	if monitor != nil {
		monitor.StopServer()
	}
	if recorder != nil {
		recorder.Flush()
	}

	r.printSummary(results)

	return results
}

// runTest executes one test on its own session. The session is shut down
// before the function returns, so no callback survives into the next test.
func (r *Runner) runTest(
	test Test,
	traceHook *recording.TraceHook,
	monitor *monitoring.Monitor,
) TestResult {
	k := kernel.NewEventKernel(r.precision)

	if r.dutSetup != nil {
		if err := r.dutSetup(k); err != nil {
			return TestResult{Name: test.Name, Err: err}
		}
	}

	s := scheduler.New(k)
	if r.taskLoggingOn {
		s.AcceptHook(scheduler.NewTaskLogger(r.logger, k))
	}
	if traceHook != nil {
		s.AcceptHook(traceHook)
	}
	if monitor != nil {
		monitor.RegisterScheduler(s)
		if !r.monitorStarted {
			monitor.StartServer()
			r.monitorStarted = true
		}
	}

	task := s.Spawn(test.Name, test.Fn)

	start := time.Now()
	err := s.RunUntilIdle()
	wall := time.Since(start)

	s.Shutdown()

	if err == nil && task.State() != scheduler.TaskCompleted {
		err = fmt.Errorf("test task ended %s", task.State())
	}

	return TestResult{
		Name:     test.Name,
		Passed:   err == nil,
		Err:      err,
		SimTime:  k.CurrentTime(),
		WallTime: wall,
	}
}

func (r *Runner) printSummary(results []TestResult) {
	unit := r.precision.String()

	header := fmt.Sprintf("** %-32s %6s %14s %13s **",
		"TEST", "STATUS", "SIM TIME ("+unit+")", "WALL TIME (s)")
	rule := strings.Repeat("*", len(header))

	r.logger.Println(rule)
	r.logger.Println(header)
	r.logger.Println(rule)

	passed := 0
	for _, res := range results {
		status := "FAIL"
		if res.Passed {
			status = "PASS"
			passed++
		}

		r.logger.Printf("** %-32s %6s %14d %13.2f **",
			res.Name, status, res.SimTime, res.WallTime.Seconds())

		if res.Err != nil {
			r.logger.Printf("**   %v", res.Err)
		}
	}

	r.logger.Println(rule)
	r.logger.Printf("** Passed %d of %d tests", passed, len(results))
	r.logger.Println(rule)
}

// ReportAndExit terminates the process with a non-zero code if any test
// failed. Exit handlers, including the recorder flush, still run.
func ReportAndExit(results []TestResult) {
	for _, res := range results {
		if !res.Passed {
			atexit.Exit(1)
		}
	}

	atexit.Exit(0)
}
