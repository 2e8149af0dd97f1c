package runner

import (
	"log"
	"os"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/vtime"
)

// DUTSetupFunc prepares the design under test on a fresh kernel session. It
// typically defines the signals the tests drive and observe.
type DUTSetupFunc func(k *kernel.EventKernel) error

// Builder can be used to build a Runner.
type Builder struct {
	precision     vtime.Unit
	dutSetup      DUTSetupFunc
	registry      *Registry
	logger        *log.Logger
	taskLoggingOn bool
	recordingPath string
	recordingOn   bool
	monitorOn     bool
	monitorPort   int
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		precision: vtime.Ps,
		registry:  defaultRegistry,
		logger:    log.New(os.Stderr, "", 0),
	}
}

// WithPrecision sets the kernel step resolution for every test session.
func (b Builder) WithPrecision(unit vtime.Unit) Builder {
	b.precision = unit
	return b
}

// WithDUT sets the function that prepares the design under test on each
// fresh session.
func (b Builder) WithDUT(setup DUTSetupFunc) Builder {
	b.dutSetup = setup
	return b
}

// WithRegistry makes the runner execute the tests of the given registry
// instead of the default one.
func (b Builder) WithRegistry(r *Registry) Builder {
	b.registry = r
	return b
}

// WithLogger sets the logger for the summary table and task logging.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithTaskLogging makes each session print task transitions and trigger
// firings.
func (b Builder) WithTaskLogging() Builder {
	b.taskLoggingOn = true
	return b
}

// WithRecording makes each session record task and trigger events into a
// SQLite database at the given path.
func (b Builder) WithRecording(path string) Builder {
	b.recordingOn = true
	b.recordingPath = path
	return b
}

// WithMonitoring starts a monitoring server for the regression.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.precision.IsMetric() {
		log.Panicf("precision %s is not a metric unit", b.precision)
	}

	if !b.monitorOn && b.monitorPort != 0 {
		log.Panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the runner.
func (b Builder) Build() *Runner {
	b.parametersMustBeValid()

	return &Runner{
		precision:     b.precision,
		dutSetup:      b.dutSetup,
		registry:      b.registry,
		logger:        b.logger,
		taskLoggingOn: b.taskLoggingOn,
		recordingOn:   b.recordingOn,
		recordingPath: b.recordingPath,
		monitorOn:     b.monitorOn,
		monitorPort:   b.monitorPort,
	}
}
