// Package irq defines the interface for a 6502 family interrupt line.
// A device which raises interrupts (a timer, a video chip) implements
// Sender and is installed on the CPU as its IRQ or NMI line. The CPU
// samples lines only at instruction boundaries.
// NOTE: IRQ is treated as level triggered and NMI as edge triggered by the
//       CPU. Senders just report the current line state.
package irq

type Sender interface {
	// Raised indicates whether the interrupt is currently held high.
	Raised() bool
}
