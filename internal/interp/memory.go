package interp

import (
	"fmt"
	"strings"
)

// Memory holds the variables of a running program.
type Memory struct {
	order []string
	vals  map[string]int64
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{vals: make(map[string]int64)}
}

// Declare creates name with value v, or resets it if it exists.
func (m *Memory) Declare(name string, v int64) {
	if _, ok := m.vals[name]; !ok {
		m.order = append(m.order, name)
	}
	m.vals[name] = v
}

// Set updates an existing variable. It reports false if name is undeclared.
func (m *Memory) Set(name string, v int64) bool {
	if _, ok := m.vals[name]; !ok {
		return false
	}
	m.vals[name] = v
	return true
}

// Get returns the value of name.
func (m *Memory) Get(name string) (int64, bool) {
	v, ok := m.vals[name]
	return v, ok
}

// Names returns the variable names in declaration order.
func (m *Memory) Names() []string {
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// Len returns the number of variables.
func (m *Memory) Len() int { return len(m.order) }

// Snapshot returns a copy of all variables.
func (m *Memory) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(m.vals))
	for k, v := range m.vals {
		out[k] = v
	}
	return out
}

// String formats the memory as "{x=1, y=2}".
func (m *Memory) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range m.order {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", name, m.vals[name])
	}
	b.WriteByte('}')
	return b.String()
}
