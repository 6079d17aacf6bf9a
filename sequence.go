package esphttp

import "github.com/embeddedgo/esphttp/serial"

// sequenceReader sends an optional command once, then scans incoming bytes
// for a literal terminator sequence. Matching resets the cursor to 0 on any
// mismatch; it is not a KMP-style matcher and pathological, self-overlapping
// terminators can miss matches. Every terminator this driver uses (OK\r\n,
// \r\n, +IPD,) is self-overlap-free, so that is never observed in practice.
type sequenceReader struct {
	port serial.Port

	command    []byte
	terminator []byte
	sent       bool
	cursor     int
}

// newSearch resets the reader to scan for terminator, optionally emitting
// command first. An empty command is legal (used when the command was
// already written through a separate path, e.g. the AT+CIPSEND line that
// PreparingRequest writes directly). An empty terminator completes
// immediately on the next tick.
func (r *sequenceReader) newSearch(command, terminator []byte) {
	r.command = command
	r.terminator = terminator
	r.sent = false
	r.cursor = 0
}

// tick reports whether the terminator has been fully matched. Once matched,
// further calls keep returning true without touching the port.
func (r *sequenceReader) tick() bool {
	if r.cursor == len(r.terminator) {
		return true
	}
	if !r.sent {
		if len(r.command) > 0 {
			r.port.Write(r.command)
			for r.port.Busy() {
			}
		}
		r.sent = true
	}
	if r.port.Available() >= 1 {
		var b [1]byte
		r.port.Read(b[:])
		if r.terminator[r.cursor] == b[0] {
			r.cursor++
		} else {
			r.cursor = 0
		}
	}
	return r.cursor == len(r.terminator)
}
