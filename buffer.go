package esphttp

import "github.com/embeddedgo/esphttp/serial"

// bufferReader fills a caller-provided destination slice with exactly
// len(dst) bytes read from the port, across however many ticks are
// required. Each tick consumes whatever is currently available.
type bufferReader struct {
	port serial.Port

	dst   []byte
	index int
}

func (r *bufferReader) newBuffer(dst []byte) {
	r.dst = dst
	r.index = 0
}

func (r *bufferReader) tick() bool {
	if r.index == len(r.dst) {
		return true
	}
	n := r.port.Read(r.dst[r.index:])
	r.index += n
	return r.index == len(r.dst)
}
