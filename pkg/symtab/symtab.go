// Package symtab implements the assembler's symbol table: a name-to-entry
// map with forward-declaration semantics (an undefined reference is
// materialized on first lookup, then overwritten in place on its first real
// definition).
package symtab

import (
	"fmt"

	"github.com/lePerdu/tixasm/pkg/section"
)

// Type classifies a symbol entry. These mirror ELF's symbol types closely
// enough to be familiar, with SECTION/MACRO reserved for future use.
type Type uint8

const (
	Undef Type = iota
	Func
	Object
	SectionSym
	Macro
)

func (t Type) String() string {
	switch t {
	case Undef:
		return "undef"
	case Func:
		return "func"
	case Object:
		return "object"
	case SectionSym:
		return "section"
	case Macro:
		return "macro"
	default:
		return "unknown"
	}
}

// Entry is a single symbol table record. Entries are owned by the Table for
// the lifetime of an assembly run: once returned from Lookup or Define, the
// pointer stays valid and stable, so expression nodes and relocation entries
// may hold onto it as a read-only reference.
type Entry struct {
	Name    string
	Type    Type
	Section section.Section
	Value   int32
}

// ErrDuplicate is returned by Define when name already names a non-Undef
// symbol.
type ErrDuplicate struct {
	Name     string
	Existing Type
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate definition of %q (already defined as %s)", e.Name, e.Existing)
}

// Table is a name-keyed symbol table. The zero value is not usable; use New.
type Table struct {
	entries map[string]*Entry
}

// New creates an empty symbol table, sized for a modest program the way the
// reference hash table starts at ~128 buckets.
func New() *Table {
	return &Table{entries: make(map[string]*Entry, 128)}
}

// Lookup returns the entry for name, or nil if none has been referenced or
// defined yet.
func (t *Table) Lookup(name string) *Entry {
	return t.entries[name]
}

// LookupBytes is Lookup for a name given as a byte slice, avoiding a forced
// allocation when the caller already owns the bytes contiguously — mirrors
// the source's symtab_search_len, which exists to avoid a strndup+free.
func (t *Table) LookupBytes(name []byte) *Entry {
	return t.entries[string(name)]
}

// Reference returns the entry for name, inserting a new Undef entry if one
// does not already exist. This is how a forward reference comes into being:
// the parser calls Reference for every symbol used in an expression, and the
// resulting Entry becomes Object-typed in place once Define sees the real
// definition.
func (t *Table) Reference(name string) *Entry {
	if e, ok := t.entries[name]; ok {
		return e
	}
	e := &Entry{Name: name, Type: Undef}
	t.entries[name] = e
	return e
}

// Define inserts or completes a symbol definition. If name is unreferenced,
// a new entry is created. If it exists and is still Undef (a forward
// reference), the entry is overwritten in place — existing holders of the
// pointer observe the definition once it lands. If it exists with any other
// type, that is a duplicate definition and is rejected.
func (t *Table) Define(name string, typ Type, sec section.Section, value int32) (*Entry, error) {
	e, ok := t.entries[name]
	if !ok {
		e = &Entry{Name: name, Type: typ, Section: sec, Value: value}
		t.entries[name] = e
		return e, nil
	}
	if e.Type != Undef {
		return nil, &ErrDuplicate{Name: name, Existing: e.Type}
	}
	e.Type = typ
	e.Section = sec
	e.Value = value
	return e, nil
}

// Len reports the number of distinct names known to the table (defined or
// still forward-referenced).
func (t *Table) Len() int {
	return len(t.entries)
}
