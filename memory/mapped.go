package memory

import (
	"fmt"
	"sort"
)

var (
	_ = Bank(&Mapped{})
	_ = Faulter(&Mapped{})
	_ = Bank(&Window{})
)

// Policy is an enumeration of how a Mapped bus handles addresses
// which aren't covered by any region.
type Policy int

const (
	POLICY_UNIMPLEMENTED Policy = iota // Start of valid policy enumerations.
	POLICY_IGNORE                      // Reads return the open bus value, writes are dropped.
	POLICY_FAULT                       // As POLICY_IGNORE but the first access is recorded as a fault.
	POLICY_MAX                         // End of policy enumerations.
)

// Region describes one mapped range of the address space.
type Region struct {
	// Name is used in error messages only.
	Name string
	// Start and End are the inclusive bounds of the region.
	Start uint16
	End   uint16
	// Mask if non-zero is applied to the offset (addr - Start) before it is
	// passed to Bank. This implements mirroring (i.e. 2k of RAM repeated
	// across 0x0000-0x1FFF uses a mask of 0x07FF).
	Mask uint16
	// Bank receives the accesses for this region.
	Bank Bank
	// ROM regions silently drop writes.
	ROM bool
}

// Mapped implements a memory.Bank which dispatches to other banks
// based on address. Banks are addressed by offset from the start of
// their region.
type Mapped struct {
	regions []Region
	policy  Policy
	openBus uint8
	fault   error
}

// NewMapped validates the regions given and returns a Mapped bus for them.
// openBus is the value returned for reads of unmapped addresses.
func NewMapped(policy Policy, openBus uint8, regions ...Region) (*Mapped, error) {
	if policy <= POLICY_UNIMPLEMENTED || policy >= POLICY_MAX {
		return nil, fmt.Errorf("policy %d is invalid", policy)
	}
	r := make([]Region, len(regions))
	copy(r, regions)
	sort.Slice(r, func(i, j int) bool { return r[i].Start < r[j].Start })
	for i, reg := range r {
		if reg.Bank == nil {
			return nil, fmt.Errorf("region %q has no bank", reg.Name)
		}
		if reg.End < reg.Start {
			return nil, fmt.Errorf("region %q ends (0x%.4X) before it starts (0x%.4X)", reg.Name, reg.End, reg.Start)
		}
		if i > 0 && reg.Start <= r[i-1].End {
			return nil, fmt.Errorf("region %q overlaps region %q at 0x%.4X", reg.Name, r[i-1].Name, reg.Start)
		}
	}
	return &Mapped{
		regions: r,
		policy:  policy,
		openBus: openBus,
	}, nil
}

// find returns the region containing addr along with the offset to pass to its bank.
func (m *Mapped) find(addr uint16) (*Region, uint16, bool) {
	for i := range m.regions {
		r := &m.regions[i]
		if addr < r.Start {
			break
		}
		if addr <= r.End {
			off := addr - r.Start
			if r.Mask != 0 {
				off &= r.Mask
			}
			return r, off, true
		}
	}
	return nil, 0, false
}

func (m *Mapped) unmapped(addr uint16, write bool) {
	if m.policy == POLICY_FAULT && m.fault == nil {
		m.fault = UnmappedAccess{Addr: addr, Write: write}
	}
}

// Read implements the interface for memory.Bank.
func (m *Mapped) Read(addr uint16) uint8 {
	r, off, ok := m.find(addr)
	if !ok {
		m.unmapped(addr, false)
		return m.openBus
	}
	return r.Bank.Read(off)
}

// ReadOnly implements the interface for memory.Bank. Unmapped addresses
// return the open bus value and are never recorded as a fault.
func (m *Mapped) ReadOnly(addr uint16) uint8 {
	r, off, ok := m.find(addr)
	if !ok {
		return m.openBus
	}
	return r.Bank.ReadOnly(off)
}

// Write implements the interface for memory.Bank.
func (m *Mapped) Write(addr uint16, val uint8) {
	r, off, ok := m.find(addr)
	if !ok {
		m.unmapped(addr, true)
		return
	}
	if r.ROM {
		return
	}
	r.Bank.Write(off, val)
}

// PowerOn implements the interface for memory.Bank and powers on every mapped bank
// except ROM regions which keep their contents. Any recorded fault is cleared.
func (m *Mapped) PowerOn() {
	for _, r := range m.regions {
		if r.ROM {
			continue
		}
		r.Bank.PowerOn()
	}
	m.fault = nil
}

// Fault implements the interface for memory.Faulter.
func (m *Mapped) Fault() error {
	return m.fault
}

// ClearFault implements the interface for memory.Faulter.
func (m *Mapped) ClearFault() {
	m.fault = nil
}

// Window presents part of a larger bank to a Region. Offsets from the region
// are added to Base before being passed on which lets a single Flat back
// several regions at their real addresses.
type Window struct {
	Bank Bank
	Base uint16
}

// Read implements the interface for memory.Bank.
func (w *Window) Read(addr uint16) uint8 {
	return w.Bank.Read(w.Base + addr)
}

// ReadOnly implements the interface for memory.Bank.
func (w *Window) ReadOnly(addr uint16) uint8 {
	return w.Bank.ReadOnly(w.Base + addr)
}

// Write implements the interface for memory.Bank.
func (w *Window) Write(addr uint16, val uint8) {
	w.Bank.Write(w.Base+addr, val)
}

// PowerOn implements the interface for memory.Bank and powers on the underlying bank.
func (w *Window) PowerOn() {
	w.Bank.PowerOn()
}
