// Package espserial adapts a real OS-level UART, opened through
// go.bug.st/serial, to the non-blocking serial.Port contract the driver
// requires.
//
// go.bug.st/serial's Port.Read blocks until at least one byte arrives (or a
// read timeout elapses), which is the wrong shape for a cooperative,
// suspension-free driver. Port runs a single background goroutine that
// drains the OS port into a ring buffer and serves Available/Read from that
// buffer without ever blocking the caller — the same impedance-matching job
// embeddedgo/espat's receiverLoop goroutine does for its io.Reader.
package espserial

import (
	"errors"
	"sync"

	"go.bug.st/serial"

	espserialport "github.com/embeddedgo/esphttp/serial"
)

// Options configures Open. Zero-value fields are replaced by their defaults
// in Open.
type Options struct {
	// BaudRate defaults to serial.DefaultBaud (115200) if zero.
	BaudRate int
	// RingBufferSize bounds how many bytes Port buffers between ticks.
	// Defaults to 4096 if zero.
	RingBufferSize int
}

func (o *Options) setDefaults() {
	if o.BaudRate == 0 {
		o.BaudRate = espserialport.DefaultBaud
	}
	if o.RingBufferSize == 0 {
		o.RingBufferSize = 4096
	}
}

func (o *Options) validate() error {
	if o.BaudRate < 0 {
		return errors.New("espserial: negative baud rate")
	}
	if o.RingBufferSize <= 0 {
		return errors.New("espserial: non-positive ring buffer size")
	}
	return nil
}

// Port is a serial.Port backed by a real OS serial device.
type Port struct {
	name string
	opts Options

	mu       sync.Mutex
	port     serial.Port
	settings espserialport.Settings
	ring     []byte
	head     int
	tail     int
	count    int

	stop chan struct{}
	done chan struct{}
}

// Open names the OS device (e.g. "/dev/ttyUSB0", "COM3") to open when
// Initialize is called. It does not open the port itself.
func Open(name string, opts Options) (*Port, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	p := &Port{
		name: name,
		opts: opts,
		ring: make([]byte, opts.RingBufferSize),
	}
	p.settings = espserialport.Settings{
		BaudRate:  opts.BaudRate,
		FrameSize: 8,
		Parity:    espserialport.ParityNone,
		StopBits:  espserialport.StopBitsOne,
	}
	return p, nil
}

// Settings returns a mutable view of the framing parameters. Must be called
// before Initialize to take effect.
func (p *Port) Settings() *espserialport.Settings {
	return &p.settings
}

func toMode(s espserialport.Settings) *serial.Mode {
	mode := &serial.Mode{BaudRate: s.BaudRate, DataBits: s.FrameSize}
	switch s.Parity {
	case espserialport.ParityOdd:
		mode.Parity = serial.OddParity
	case espserialport.ParityEven:
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}
	switch s.StopBits {
	case espserialport.StopBitsTwo:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}
	return mode
}

// Initialize opens the OS serial device with the currently configured
// Settings and starts the background drain goroutine.
func (p *Port) Initialize() bool {
	port, err := serial.Open(p.name, toMode(p.settings))
	if err != nil {
		return false
	}
	p.port = port
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.drain()
	return true
}

// Close stops the background drain goroutine and closes the OS device.
// Not part of serial.Port; used by callers that own the Port's lifetime
// end to end (the driver itself never calls this).
func (p *Port) Close() error {
	if p.stop != nil {
		close(p.stop)
	}
	// Closing the OS device first unblocks a drain goroutine parked in Read.
	var err error
	if p.port != nil {
		err = p.port.Close()
	}
	if p.done != nil {
		<-p.done
	}
	return err
}

func (p *Port) drain() {
	defer close(p.done)
	buf := make([]byte, 256)
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		n, err := p.port.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		p.mu.Lock()
		for i := 0; i < n; i++ {
			if p.count == len(p.ring) {
				// Ring full: drop the oldest byte to make room rather than
				// block the OS read and stall the background goroutine.
				p.head = (p.head + 1) % len(p.ring)
				p.count--
			}
			p.ring[p.tail] = buf[i]
			p.tail = (p.tail + 1) % len(p.ring)
			p.count++
		}
		p.mu.Unlock()
	}
}

// Flush discards any buffered but unread input.
func (p *Port) Flush() {
	p.mu.Lock()
	p.head, p.tail, p.count = 0, 0, 0
	p.mu.Unlock()
}

// Write enqueues p for transmission.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Busy always reports false: go.bug.st/serial's Write is synchronous with
// respect to the OS write syscall, so by the time Write returns the TX FIFO
// handoff is already done from this process's point of view.
func (p *Port) Busy() bool {
	return false
}

// Available reports how many bytes are currently buffered.
func (p *Port) Available() int {
	p.mu.Lock()
	n := p.count
	p.mu.Unlock()
	return n
}

// Read copies up to len(dst) buffered bytes into dst.
func (p *Port) Read(dst []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(dst)
	if n > p.count {
		n = p.count
	}
	for i := 0; i < n; i++ {
		dst[i] = p.ring[p.head]
		p.head = (p.head + 1) % len(p.ring)
	}
	p.count -= n
	return n
}
