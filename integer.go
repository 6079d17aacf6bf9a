package esphttp

import "github.com/embeddedgo/esphttp/serial"

// integerReader skips leading non-digit bytes, accumulates a base-10
// unsigned integer from consecutive digit bytes, and terminates on (and
// consumes) the first non-digit byte seen after at least one digit.
//
// A reader built by newIntegerReader reports done immediately until the
// first call to restart, so a stray tick cannot stall the machine. The zero
// value of integerReader does not have this property.
type integerReader struct {
	port serial.Port

	finished   bool
	foundDigit bool
	value      uint32
}

func newIntegerReader(port serial.Port) integerReader {
	return integerReader{port: port, finished: true}
}

func (r *integerReader) restart() {
	r.finished = false
	r.foundDigit = false
	r.value = 0
}

func (r *integerReader) tick() bool {
	if r.finished {
		return true
	}
	if r.port.Available() >= 1 {
		var b [1]byte
		r.port.Read(b[:])
		c := b[0]
		if c >= '0' && c <= '9' {
			r.value = r.value*10 + uint32(c-'0')
			r.foundDigit = true
		} else if r.foundDigit {
			r.finished = true
		}
	}
	return r.finished
}

func (r *integerReader) result() uint32 { return r.value }
