package scheduler

import (
	"fmt"

	"github.com/veritb/veritb/kernel"
)

// A Handle is an opaque, non-owning reference to one simulator-resident
// signal. It is a lookup key plus cached metadata; it never owns simulator
// memory, and any number of handles may reference the same signal.
type Handle struct {
	k     kernel.Kernel
	obj   kernel.ObjectID
	path  string
	width int

	children map[string]*Handle
}

// Resolve looks up a hierarchical signal path once and returns a handle
// usable for the rest of the run. An unresolvable path fails with
// ErrStaleHandle.
func Resolve(k kernel.Kernel, path string) (*Handle, error) {
	obj, err := k.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrStaleHandle, path)
	}

	width, err := k.Width(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrStaleHandle, path)
	}

	return &Handle{
		k:        k,
		obj:      obj,
		path:     path,
		width:    width,
		children: make(map[string]*Handle),
	}, nil
}

// Child resolves a sub-signal by name relative to this handle. Resolved
// children are cached, so repeated lookups are free.
func (h *Handle) Child(name string) (*Handle, error) {
	if child, ok := h.children[name]; ok {
		return child, nil
	}

	child, err := Resolve(h.k, h.path+"."+name)
	if err != nil {
		return nil, err
	}

	h.children[name] = child
	return child, nil
}

// Path returns the hierarchical path the handle was resolved from.
func (h *Handle) Path() string { return h.path }

// Width returns the signal's bit width.
func (h *Handle) Width() int { return h.width }

// Value reads the signal's current value.
func (h *Handle) Value() (uint64, error) {
	v, err := h.k.Read(h.obj)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrStaleHandle, h.path)
	}
	return v, nil
}

// SameObject reports whether two handles reference the same underlying
// signal. Handle equality is identity of the referenced object, not of the
// handle values.
func (h *Handle) SameObject(other *Handle) bool {
	return other != nil && h.obj == other.obj
}

func (h *Handle) String() string { return h.path }
