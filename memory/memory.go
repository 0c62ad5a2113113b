// Package memory defines the basic interfaces for working
// with a 6502 family memory map. Since each implementation
// that is emulated has specific mappings (including shadowed
// regions) this is defined as an interface. A flat 64k RAM
// and a region mapped bus are provided as implementations.
package memory

import "fmt"

// Bank is the contract the CPU uses to reach memory and devices.
type Bank interface {
	// Read returns the data byte stored at addr. For mapped devices this
	// may cause side effects (clearing flags, etc).
	Read(addr uint16) uint8
	// ReadOnly returns the same data as Read but must never cause a side effect.
	// Used by debuggers and disassemblers.
	ReadOnly(addr uint16) uint8
	// Write updates addr with the new value. For ROM addresses this is simply a no-op without
	// any error.
	Write(addr uint16, val uint8)
	// PowerOn performs power on reset of the memory. This is implementation specific as to
	// whether it's randomized or preset to all zeros.
	PowerOn()
}

// Faulter is implemented by banks which can record a fatal access
// (such as touching an unmapped region). The CPU checks for this after
// every instruction and halts if one is recorded. A CPU Reset clears it.
type Faulter interface {
	// Fault returns the first recorded fault or nil.
	Fault() error
	// ClearFault drops any recorded fault.
	ClearFault()
}

// UnmappedAccess is the fault recorded when an address outside
// any mapped region is accessed on a bus using POLICY_FAULT.
type UnmappedAccess struct {
	Addr  uint16
	Write bool
}

// Error implements the interface for error types.
func (e UnmappedAccess) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("unmapped %s at 0x%.4X", op, e.Addr)
}

// ReadAddr returns the little endian 16 bit value stored at addr and addr+1.
func ReadAddr(b Bank, addr uint16) uint16 {
	return (uint16(b.Read(addr+1)) << 8) + uint16(b.Read(addr))
}
