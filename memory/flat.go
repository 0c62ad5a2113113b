package memory

var _ = Bank(&Flat{})

// Flat implements a full 64k RAM with no mapped devices. Every address
// is valid so it never faults.
type Flat struct {
	// Fill is the value every location is set to on PowerOn.
	Fill uint8
	addr [65536]uint8
}

// NewFlat returns a powered on Flat memory filled with fill.
func NewFlat(fill uint8) *Flat {
	f := &Flat{Fill: fill}
	f.PowerOn()
	return f
}

// Read implements the interface for memory.Bank.
func (f *Flat) Read(addr uint16) uint8 {
	return f.addr[addr]
}

// ReadOnly implements the interface for memory.Bank. RAM has no
// read side effects so this is identical to Read.
func (f *Flat) ReadOnly(addr uint16) uint8 {
	return f.addr[addr]
}

// Write implements the interface for memory.Bank.
func (f *Flat) Write(addr uint16, val uint8) {
	f.addr[addr] = val
}

// PowerOn implements the interface for memory.Bank and sets
// all of memory to the Fill value.
func (f *Flat) PowerOn() {
	for i := range f.addr {
		f.addr[i] = f.Fill
	}
}

// Load copies data into memory starting at addr. Data past 0xFFFF wraps to 0x0000.
func (f *Flat) Load(addr uint16, data []byte) {
	for _, b := range data {
		f.addr[addr] = b
		addr++
	}
}

// SetVector stores addr as a little endian pointer at vector (i.e. RESET_VECTOR).
func (f *Flat) SetVector(vector uint16, addr uint16) {
	f.addr[vector] = uint8(addr & 0xFF)
	f.addr[vector+1] = uint8((addr & 0xFF00) >> 8)
}
