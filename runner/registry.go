// Package runner executes registered verification tests as a regression,
// each test on a fresh kernel and scheduler session.
package runner

import (
	"log"

	"github.com/veritb/veritb/scheduler"
)

// A Test is one registered verification test. Its function becomes the
// test's top-level task.
type Test struct {
	Name string
	Fn   scheduler.TaskFunc
}

// A Registry holds named tests in registration order.
type Registry struct {
	tests []Test
	names map[string]bool
}

// NewRegistry creates an empty test registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds a test. Registering two tests with the same name is a
// programming error.
func (r *Registry) Register(name string, fn scheduler.TaskFunc) {
	if r.names[name] {
		log.Panicf("test %s is already registered", name)
	}

	r.names[name] = true
	r.tests = append(r.tests, Test{Name: name, Fn: fn})
}

// Tests returns the registered tests in registration order.
func (r *Registry) Tests() []Test {
	dup := make([]Test, len(r.tests))
	copy(dup, r.tests)
	return dup
}

var defaultRegistry = NewRegistry()

// Register adds a test to the default registry.
func Register(name string, fn scheduler.TaskFunc) {
	defaultRegistry.Register(name, fn)
}

// DefaultRegistry returns the registry that package-level Register adds to.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
