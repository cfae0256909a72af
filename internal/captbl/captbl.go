// Package captbl allocates capability-table slots for the components a
// capability manager is responsible for.
package captbl

import (
	"fmt"
	"sort"

	"github.com/cosbuild/composer/internal/system"
)

// BootCaptblFree is the first slot not reserved by the boot environment.
const BootCaptblFree uint32 = 52

// alignment is the boundary a kind change must start on.
const alignment uint32 = 4

// Kind is the kind of handle a capability slot holds.
type Kind int

const (
	// KindCapTbl is a capability-table capability.
	KindCapTbl Kind = iota

	// KindPgTbl is a page-table capability.
	KindPgTbl

	// KindComp is a component-handle capability.
	KindComp
)

// String returns the name written into the generated tables.
func (k Kind) String() string {
	switch k {
	case KindCapTbl:
		return "captbl"
	case KindPgTbl:
		return "pgtbl"
	case KindComp:
		return "comp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resource is a capability to allocate: its kind and the component it
// targets.
type Resource struct {
	Kind   Kind
	Target system.ComponentID
}

// CapTbl returns the capability-table capability for target.
func CapTbl(target system.ComponentID) Resource { return Resource{Kind: KindCapTbl, Target: target} }

// PgTbl returns the page-table capability for target.
func PgTbl(target system.ComponentID) Resource { return Resource{Kind: KindPgTbl, Target: target} }

// Comp returns the component capability for target.
func Comp(target system.ComponentID) Resource { return Resource{Kind: KindComp, Target: target} }

// Info returns the type name and target of the resource.
func (r Resource) Info() (string, system.ComponentID) {
	return r.Kind.String(), r.Target
}

// SizeOf returns the number of slots a resource occupies.
func SizeOf(r Resource) uint32 {
	switch r.Kind {
	case KindCapTbl, KindPgTbl:
		return 4
	case KindComp:
		return 4
	default:
		panic(fmt.Sprintf("captbl: no size for %s", r.Kind))
	}
}

// Sizer computes the slot size of a resource.
type Sizer func(Resource) uint32

// Option configures a Table.
type Option func(*Table)

// WithSizer replaces SizeOf as the slot-size function.
func WithSizer(s Sizer) Option {
	return func(t *Table) {
		t.sizeOf = s
	}
}

// Slot is an allocated table entry.
type Slot struct {
	Index    uint32
	Resource Resource
}

// Table is a sequential slot allocator. Entries of the same size pack
// contiguously; a size change on a misaligned frontier first rounds the
// frontier up to the next multiple of 4.
type Table struct {
	slots    map[uint32]Resource
	frontier uint32
	prevSize uint32
	sizeOf   Sizer
}

// New returns an empty table whose frontier is BootCaptblFree.
func New(opts ...Option) *Table {
	t := &Table{
		slots:    make(map[uint32]Resource),
		frontier: BootCaptblFree,
		prevSize: alignment,
		sizeOf:   SizeOf,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add places r at the frontier and returns the index it was given.
func (t *Table) Add(r Resource) uint32 {
	size := t.sizeOf(r)

	if t.frontier%alignment != 0 && size != t.prevSize {
		t.frontier += alignment - t.frontier%alignment
	}

	idx := t.frontier
	t.slots[idx] = r
	t.frontier += size
	t.prevSize = size
	return idx
}

// Slots returns the allocated entries in ascending index order.
func (t *Table) Slots() []Slot {
	out := make([]Slot, 0, len(t.slots))
	for idx, r := range t.slots {
		out = append(out, Slot{Index: idx, Resource: r})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// Frontier returns the next free index.
func (t *Table) Frontier() uint32 {
	return t.frontier
}

// Len returns the number of allocated entries.
func (t *Table) Len() int {
	return len(t.slots)
}
