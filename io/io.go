// Package io defines the basic interfaces for working
// with a 6502 family based I/O port (generally bi-directional).
// A device with ports (such as a 6532) samples an installed
// Port8 whenever a port register is read. Only the pins
// configured as inputs by the device's DDR are taken from it.
package io

// Port8 defines an 8 bit I/O port
type Port8 interface {
	// Input returns the current value being driven onto the port's pins.
	Input() uint8
}
