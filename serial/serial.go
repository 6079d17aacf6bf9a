// Package serial defines the non-blocking byte-transport contract the
// driver consumes. It does not talk to any hardware itself; see the
// espserial package for a concrete implementation backed by a real UART.
package serial

// DefaultBaud is the baud rate the ESP8266 AT firmware boots at.
const DefaultBaud = 115200

// Parity selects the parity bit mode of a Port.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// StopBits selects the number of stop bits of a Port.
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsTwo
)

// Settings holds the UART framing parameters a Port is configured with.
// The driver always requests 115200-8-N-1.
type Settings struct {
	BaudRate  int
	FrameSize int
	Parity    Parity
	StopBits  StopBits
}

// Port is the serial transport the driver is built on. It must never block:
// Available reports how many bytes are buffered right now, Read drains up to
// len(dst) of them, and Busy reflects only the local TX FIFO, never the
// remote peer.
//
// Implementations are borrowed for the lifetime of the driver that uses
// them; the driver never closes a Port.
type Port interface {
	// Initialize configures the port with the values in Settings and opens
	// it. It returns false on failure.
	Initialize() bool

	// Settings returns a mutable view of the port's framing parameters.
	// Callers configure it before calling Initialize.
	Settings() *Settings

	// Flush discards any buffered but unread input.
	Flush()

	// Write enqueues p for transmission and returns immediately; it does not
	// wait for the bytes to leave the TX FIFO.
	Write(p []byte) (int, error)

	// Busy reports whether the TX FIFO is still draining. It is a local,
	// microsecond-scale hardware flag, not a network-level acknowledgement.
	Busy() bool

	// Available reports how many bytes can be read right now without
	// blocking.
	Available() int

	// Read copies up to len(dst) already-available bytes into dst and
	// returns how many were copied. It never blocks waiting for more.
	Read(dst []byte) int
}
