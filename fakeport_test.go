package esphttp

import "github.com/embeddedgo/esphttp/serial"

// fakePort is a deterministic, test-only serial.Port. The test pushes bytes
// onto the read queue with feed and inspects what was written with
// writtenString; there is no background goroutine, so Busy always reports
// false and every tick is fully under the test's control.
type fakePort struct {
	settings serial.Settings
	pending  []byte
	written  []byte
}

func (p *fakePort) Initialize() bool           { return true }
func (p *fakePort) Settings() *serial.Settings { return &p.settings }
func (p *fakePort) Flush()                     { p.pending = nil }
func (p *fakePort) Busy() bool                 { return false }
func (p *fakePort) Available() int             { return len(p.pending) }

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Read(dst []byte) int {
	n := copy(dst, p.pending)
	p.pending = p.pending[n:]
	return n
}

// feed appends bytes the test pretends just arrived over the wire.
func (p *fakePort) feed(s string) {
	p.pending = append(p.pending, []byte(s)...)
}

func (p *fakePort) writtenString() string {
	return string(p.written)
}
