package recording

import (
	"os"
	"strings"
	"time"
)

// RunInfo is one property of the recorded run.
type RunInfo struct {
	Property string
	Value    string
}

// A RunRecorder logs the metadata of one regression run.
type RunRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []RunInfo
}

// NewRunRecorder creates a RunRecorder writing into the given recorder.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	r := &RunRecorder{recorder: recorder}

	stamp := time.Now().Format("2006_01_02_15_04_05")
	r.tableName = "run_log_" + stamp
	r.recorder.CreateTable(r.tableName, RunInfo{})

	return r
}

// Record captures the start time and the invocation of the current run.
func (r *RunRecorder) Record() {
	startTime := time.Now().Format("2006-01-02 15:04:05")
	r.entries = append(r.entries, RunInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	r.entries = append(r.entries, RunInfo{"Command", cmd})

	wd, err := os.Getwd()
	if err == nil {
		r.entries = append(r.entries, RunInfo{"Directory", wd})
	}
}

// AddProperty attaches an extra property to the run log.
func (r *RunRecorder) AddProperty(property, value string) {
	r.entries = append(r.entries, RunInfo{property, value})
}

// Flush writes the run log along with the end time.
func (r *RunRecorder) Flush() {
	for _, entry := range r.entries {
		r.recorder.InsertData(r.tableName, entry)
	}

	endTime := time.Now().Format("2006-01-02 15:04:05")
	r.recorder.InsertData(r.tableName, RunInfo{"End Time", endTime})

	r.entries = nil

	r.recorder.Flush()
}
