package esphttp

import (
	"bytes"
	"strconv"
)

// Header is the result of parsing the status line, Content-Length header,
// and header terminator out of a captured first response packet.
type Header struct {
	StatusCode    int
	ContentLength int
	HeaderLength  int
}

// IsValid reports whether every field of Header was successfully parsed.
func (h Header) IsValid() bool {
	return h.StatusCode != 0 && h.ContentLength != 0 && h.HeaderLength != 0
}

var (
	statusLinePrefix    = []byte("HTTP/1.1 ")
	contentLengthPrefix = []byte("Content-Length: ")
	headerTerminator    = []byte("\r\n\r\n")
)

// parseHeader locates the status line, Content-Length header, and the
// blank-line header terminator in packet. Any missing token yields the zero
// Header, which fails IsValid. Matching is case-sensitive on
// "Content-Length" and only recognizes HTTP/1.1 status lines.
func parseHeader(packet []byte) Header {
	var zero Header

	i := bytes.Index(packet, statusLinePrefix)
	if i < 0 {
		return zero
	}
	status, ok := leadingInt(packet[i+len(statusLinePrefix):])
	if !ok {
		return zero
	}

	j := bytes.Index(packet, contentLengthPrefix)
	if j < 0 {
		return zero
	}
	length, ok := leadingInt(packet[j+len(contentLengthPrefix):])
	if !ok {
		return zero
	}

	k := bytes.Index(packet, headerTerminator)
	if k < 0 {
		return zero
	}

	return Header{
		StatusCode:    status,
		ContentLength: length,
		HeaderLength:  k + len(headerTerminator),
	}
}

// leadingInt parses the decimal integer at the start of b, stopping at the
// first non-digit byte. It reports false if b does not start with a digit.
func leadingInt(b []byte) (int, bool) {
	end := 0
	for end < len(b) && b[end] >= '0' && b[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(b[:end]))
	if err != nil {
		return 0, false
	}
	return n, true
}
