// Package loadstack tracks identifiers that are currently under construction
// during a single top-level resolution call. Re-entering an identifier that is
// still on the stack is a circular reference; the stack reconstructs the full
// cycle path for the error.
package loadstack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the sentinel wrapped by CycleError.
var ErrCycle = errors.New("circular reference detected")

// CycleError reports a resolution chain that revisited an identifier still
// under construction. Path runs from the first occurrence of the repeated
// identifier back to itself, e.g. [a, b, a].
type CycleError struct {
	Path []string
}

func (e CycleError) Error() string {
	if len(e.Path) == 0 {
		return "circular reference detected"
	}
	return fmt.Sprintf("circular reference detected while resolving %q: %s",
		e.Path[0], strings.Join(e.Path, " -> "))
}

func (e CycleError) Unwrap() error {
	return ErrCycle
}

// Stack is an ordered set of identifiers under construction. It is not safe
// for concurrent use; the owning container serializes access.
type Stack struct {
	ids   []string
	index map[string]int
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{index: make(map[string]int)}
}

// Enter pushes id onto the stack. If id is already present, the stack is left
// unchanged and a CycleError carrying the full path is returned.
func (s *Stack) Enter(id string) error {
	if at, ok := s.index[id]; ok {
		path := make([]string, 0, len(s.ids)-at+1)
		path = append(path, s.ids[at:]...)
		path = append(path, id)
		return CycleError{Path: path}
	}

	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return nil
}

// Leave removes id from the stack. Identifiers are expected to leave in
// reverse entry order, but Leave tolerates any order so that error paths can
// always release their marker.
func (s *Stack) Leave(id string) {
	at, ok := s.index[id]
	if !ok {
		return
	}

	delete(s.index, id)
	s.ids = append(s.ids[:at], s.ids[at+1:]...)
	for i := at; i < len(s.ids); i++ {
		s.index[s.ids[i]] = i
	}
}

// Contains reports whether id is currently under construction.
func (s *Stack) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Depth returns the number of identifiers under construction.
func (s *Stack) Depth() int {
	return len(s.ids)
}

// Path returns a copy of the current chain in entry order.
func (s *Stack) Path() []string {
	path := make([]string, len(s.ids))
	copy(path, s.ids)
	return path
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.ids = s.ids[:0]
	s.index = make(map[string]int)
}
