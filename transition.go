package esphttp

var okTerminator = []byte("OK\r\n")

// writeSync enqueues s and busy-waits for the local TX FIFO to drain. Busy
// is a microsecond-scale hardware flag, not a network wait, so a tight loop
// here does not violate the no-suspension contract. The original driver's
// equivalent helper also flushes RX before every fragment; that is not
// carried over here since it would discard input that legitimately arrived
// between two fragments of the same AT command line (see DESIGN.md).
func (d *Driver) writeSync(s string) {
	d.port.Write([]byte(s))
	for d.port.Busy() {
	}
}

// transitionState runs the on-entry action for the current phase: arming
// whichever reader comes next and recording nextPhase. It is the direct
// analogue of the original driver's transition_state, including the
// documented PreparingRequest -> SendingRequest fallthrough.
func (d *Driver) transitionState() {
	switch d.phase {
	case Reset:
		d.nextPhase = DisableEcho

	case DisableEcho:
		d.seq.newSearch([]byte("ATE0\r\n"), okTerminator)
		d.nextPhase = ConfigureAsHttpClient
		d.mode = modeSequence

	case ConfigureAsHttpClient:
		d.seq.newSearch([]byte("AT+CWMODE=1\r\n"), okTerminator)
		d.nextPhase = AttemptingApConnection
		d.mode = modeSequence

	case AttemptingApConnection:
		d.writeSync(`AT+CWJAP_CUR="`)
		d.writeSync(d.ssid)
		d.writeSync(`","`)
		d.writeSync(d.password)
		d.seq.newSearch([]byte("\"\r\n"), okTerminator)
		d.nextPhase = ConnectedToAp
		d.mode = modeSequence

	case ConnectedToAp:
		// Idle: sticky until Request or ChangeAccessPoint sets a new phase.

	case ConnectingToServer:
		d.writeSync(`AT+CIPSTART="TCP","`)
		d.writeSync(d.request.Domain)
		d.writeSync(`",`)
		d.writeSync(d.request.port())
		d.seq.newSearch([]byte("\r\n"), okTerminator)
		d.nextPhase = PreparingRequest
		d.mode = modeSequence

	case PreparingRequest:
		n, ok := formatRequest(d.response, d.request.path(), d.request.Domain, d.request.port())
		if !ok {
			d.fail("preparing_request", ErrFormatOverflow)
			d.nextPhase = CloseConnectionFailure
			d.mode = modeNone
			break
		}
		if n > MaxTransmitPacket {
			d.fail("preparing_request", ErrCipsendOverflow)
			d.nextPhase = CloseConnectionFailure
			d.mode = modeNone
			break
		}
		d.requestLen = n

		cmd, ok := formatCipsend(&d.cipsendBuf, n)
		if !ok {
			d.fail("preparing_request", ErrCipsendOverflow)
			d.nextPhase = CloseConnectionFailure
			d.mode = modeNone
			break
		}
		d.port.Write(cmd)
		for d.port.Busy() {
		}

		d.seq.newSearch(nil, okTerminator)
		d.nextPhase = SendingRequest
		d.mode = modeSequence
		fallthrough

	case SendingRequest:
		d.seq.newSearch(d.response[:d.requestLen], []byte("+IPD,"))
		d.nextPhase = GetFirstPacketLength
		d.mode = modeSequence

	case GetFirstPacketLength:
		d.intReader.restart()
		d.nextPhase = ReadingFirstPacket
		d.mode = modeInteger

	case ReadingFirstPacket:
		n := int(d.intReader.result())
		if n > MaxResponsePacket {
			d.fail("reading_first_packet", ErrBodyTooLarge)
			d.nextPhase = CloseConnectionFailure
			d.mode = modeNone
			break
		}
		d.firstPacketLen = n
		d.buf.newBuffer(d.packet[:n])
		d.nextPhase = ParsingHeader
		d.mode = modeBuffer

	case ParsingHeader:
		d.header = parseHeader(d.packet[:d.firstPacketLen])
		switch {
		case !d.header.IsValid():
			d.fail("parsing_header", ErrHeaderInvalid)
			d.nextPhase = CloseConnectionFailure
			d.mode = modeNone
		case d.header.ContentLength > len(d.response):
			d.fail("parsing_header", ErrBodyTooLarge)
			d.nextPhase = CloseConnectionFailure
			d.mode = modeNone
		case d.header.ContentLength+d.header.HeaderLength <= d.firstPacketLen:
			copy(d.response, d.packet[d.header.HeaderLength:d.header.HeaderLength+d.header.ContentLength])
			d.nextPhase = CloseConnection
			d.mode = modeNone
		default:
			bodySoFar := d.firstPacketLen - d.header.HeaderLength
			copy(d.response, d.packet[d.header.HeaderLength:d.firstPacketLen])
			d.responsePos = bodySoFar
			d.nextPhase = GetPacketLength
			d.mode = modeNone
		}

	case GetPacketLength:
		d.intReader.restart()
		d.nextPhase = ReadPacketIntoResponse
		d.mode = modeInteger

	case ReadPacketIntoResponse:
		n := int(d.intReader.result())
		d.buf.newBuffer(d.response[d.responsePos : d.responsePos+n])
		d.nextPhase = GetNextPacket
		d.mode = modeBuffer

	case GetNextPacket:
		d.responsePos += int(d.intReader.result())
		if d.responsePos >= d.header.ContentLength {
			d.nextPhase = CloseConnection
		} else {
			d.nextPhase = GetPacketLength
		}
		d.mode = modeNone

	case CloseConnection:
		d.seq.newSearch([]byte("AT+CIPCLOSE\r\n"), okTerminator)
		d.nextPhase = Complete
		d.mode = modeSequence

	case CloseConnectionFailure:
		d.seq.newSearch([]byte("AT+CIPCLOSE\r\n"), okTerminator)
		d.nextPhase = Failure
		d.mode = modeSequence

	case Complete, Failure:
		// Sticky; GetStatus never calls transitionState once here.
	}
}

// formatRequest writes the fixed-shape HTTP/1.1 GET request directly into
// dst without allocating, returning the number of bytes written. It reports
// false if dst is too small, mirroring the original driver's negative
// snprintf return. The deliberate trailing "\r\n\r\n" (rather than a single
// blank line) is preserved for wire compatibility; see DESIGN.md.
func formatRequest(dst []byte, path, domain, port string) (int, bool) {
	n := 0
	put := func(s string) bool {
		if n+len(s) > len(dst) {
			return false
		}
		n += copy(dst[n:], s)
		return true
	}
	ok := put("GET ") && put(path) && put(" HTTP/1.1\r\nHost: ") &&
		put(domain) && put(":") && put(port) && put("\r\n\r\n\r\n")
	if !ok {
		return 0, false
	}
	return n, true
}

// formatCipsend writes "AT+CIPSEND=<n>\r\n" into buf without allocating,
// in the same insert-and-check-bounds style as the teacher driver's own
// writeCmd integer formatting.
func formatCipsend(buf *[32]byte, n int) ([]byte, bool) {
	pos := 0
	insert := func(c byte) bool {
		if pos >= len(buf) {
			return false
		}
		buf[pos] = c
		pos++
		return true
	}
	for _, c := range "AT+CIPSEND=" {
		if !insert(byte(c)) {
			return nil, false
		}
	}
	start := pos
	if n == 0 {
		if !insert('0') {
			return nil, false
		}
	} else {
		v := n
		for v > 0 {
			if !insert(byte(v%10) + '0') {
				return nil, false
			}
			v /= 10
		}
		for l, r := start, pos-1; l < r; l, r = l+1, r-1 {
			buf[l], buf[r] = buf[r], buf[l]
		}
	}
	if !insert('\r') || !insert('\n') {
		return nil, false
	}
	return buf[:pos], true
}
