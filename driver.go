package esphttp

import (
	"go.uber.org/zap"

	"github.com/embeddedgo/esphttp/serial"
)

// MaxResponsePacket bounds the scratch buffer used to capture the first
// HTTP response packet before header parsing.
const MaxResponsePacket = 1460

// MaxTransmitPacket bounds the formatted outgoing HTTP request.
const MaxTransmitPacket = 2048

// Driver drives an ESP8266 AT-command session: associating with a Wi-Fi
// access point and then executing HTTP/1.1 GET requests. All progress
// happens synchronously inside GetStatus; the driver never blocks on the
// network and never allocates.
type Driver struct {
	port     serial.Port
	response []byte

	ssid, password string

	packet         [MaxResponsePacket]byte
	firstPacketLen int

	request Request
	header  Header

	phase     Phase
	nextPhase Phase
	mode      readSubMode

	requestLen  int
	responsePos int

	seq       sequenceReader
	intReader integerReader
	buf       bufferReader

	cipsendBuf [32]byte

	log     *zap.SugaredLogger
	lastErr error
}

// NewDriver constructs a Driver bound to port, with the given initial
// credentials and a caller-owned response buffer. Call Initialize before
// using it.
func NewDriver(port serial.Port, ssid, password string, response []byte, opts ...Option) *Driver {
	d := &Driver{
		port:      port,
		response:  response,
		ssid:      ssid,
		password:  password,
		mode:      modeNone,
		intReader: newIntegerReader(port),
	}
	d.seq.port = port
	d.buf.port = port
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Initialize configures the UART for 115200-8-N-1, opens it, and resets the
// phase to Reset. It returns false if the port fails to initialize.
func (d *Driver) Initialize() bool {
	s := d.port.Settings()
	s.BaudRate = serial.DefaultBaud
	s.FrameSize = 8
	s.Parity = serial.ParityNone
	s.StopBits = serial.StopBitsOne
	if !d.port.Initialize() {
		return false
	}
	d.port.Flush()
	d.phase = Reset
	d.nextPhase = Reset
	d.mode = modeNone
	return true
}

// Reset re-enters the Reset phase without touching the current credentials.
// Progression will redo the echo/mode/association sequence from scratch.
func (d *Driver) Reset() {
	d.phase = Reset
	d.nextPhase = Reset
	d.mode = modeNone
}

// ChangeAccessPoint updates the credentials used for association and
// re-associates with the new access point, breaking stickiness out of
// Complete or Failure exactly as Request does: the next GetStatus call
// resumes at AttemptingApConnection rather than jumping straight to
// ConnectedToAp (see DESIGN.md for why this departs from a literal reading
// of the original driver).
func (d *Driver) ChangeAccessPoint(ssid, password string) {
	d.ssid = ssid
	d.password = password
	d.phase = AttemptingApConnection
	d.mode = modeNone
	d.lastErr = nil
	d.transitionState()
}

// Connected reports whether the driver has associated with an access point.
func (d *Driver) Connected() bool {
	return d.phase >= ConnectedToAp
}

// Request aborts any in-flight transaction and re-enters the request
// pipeline at ConnectingToServer. It does not close an already-open TCP
// session first; callers should not interleave requests mid-transaction
// unless they accept a stale connection on the module.
func (d *Driver) Request(r Request) {
	d.request = r
	d.phase = ConnectingToServer
	d.mode = modeNone
	d.lastErr = nil
	d.transitionState()
}

// GetStatus drives one cooperative step: one tick of the active reader or,
// when no reader is active (the previous one completed), one phase
// transition. It returns the phase
// the driver is in after that step. Complete and Failure are sticky: once
// reached, further calls return the same phase without advancing anything.
func (d *Driver) GetStatus() Phase {
	if d.phase == Complete || d.phase == Failure {
		return d.phase
	}
	if d.phase == Reset {
		d.transitionState()
	}
	switch d.mode {
	case modeSequence:
		if d.seq.tick() {
			d.mode = modeNone
		}
	case modeInteger:
		if d.intReader.tick() {
			d.mode = modeNone
		}
	case modeBuffer:
		if d.buf.tick() {
			d.mode = modeNone
		}
	case modeNone:
		from := d.phase
		d.phase = d.nextPhase
		d.logTransition(from, d.phase)
		d.transitionState()
	}
	return d.phase
}

// Response returns the bytes received into the response buffer. It is only
// meaningful once GetStatus has returned Complete.
func (d *Driver) Response() []byte {
	return d.response[:d.header.ContentLength]
}

// LastError returns the cause of the most recent transition into Failure, or
// nil if no failure has occurred since construction or since the last call
// to Request or ChangeAccessPoint, both of which clear it.
func (d *Driver) LastError() error {
	return d.lastErr
}

func (d *Driver) fail(op string, err error) {
	wrapped := &Error{Op: op, Phase: d.phase, Err: err}
	d.lastErr = wrapped
	d.logFailure(op, err)
}
