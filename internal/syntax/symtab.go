package syntax

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateDeclaration is returned by Declare for a name already in the table.
var ErrDuplicateDeclaration = errors.New("duplicate declaration")

// SymbolTable records declared variable names.
// SCL has a single flat namespace: a declaration inside a block stays
// visible after the block ends, and names are never removed.
type SymbolTable struct {
	elems map[string]Pos
	order []string
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{elems: make(map[string]Pos)}
}

// Declare adds name to the table.
// If name is already present the table is left unchanged and the returned
// error wraps ErrDuplicateDeclaration.
func (s *SymbolTable) Declare(name string) error {
	return s.declareAt(name, Pos{})
}

func (s *SymbolTable) declareAt(name string, pos Pos) error {
	if prev, ok := s.elems[name]; ok {
		if prev.IsValid() {
			return fmt.Errorf("%w: %s (previous declaration at %s)", ErrDuplicateDeclaration, name, prev)
		}
		return fmt.Errorf("%w: %s", ErrDuplicateDeclaration, name)
	}
	s.elems[name] = pos
	s.order = append(s.order, name)
	return nil
}

// Contains reports whether name has been declared.
func (s *SymbolTable) Contains(name string) bool {
	_, ok := s.elems[name]
	return ok
}

// Names returns the declared names in declaration order.
func (s *SymbolTable) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len returns the number of declared names.
func (s *SymbolTable) Len() int {
	return len(s.order)
}

// String returns a string representation of the table for debugging.
func (s *SymbolTable) String() string {
	return "symbols {" + strings.Join(s.order, ", ") + "}"
}
