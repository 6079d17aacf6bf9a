package esphttp

import (
	"bytes"
	"strings"
	"testing"
)

const tickBudget = 200000

func driveUntil(t *testing.T, d *Driver, terminal func(Phase) bool) Phase {
	t.Helper()
	var p Phase
	for i := 0; i < tickBudget; i++ {
		p = d.GetStatus()
		if terminal(p) {
			return p
		}
	}
	t.Fatalf("did not reach a terminal phase within %d ticks (stuck at %s)", tickBudget, p)
	return p
}

func newAssociatedDriver(t *testing.T, response []byte) (*Driver, *fakePort) {
	t.Helper()
	port := &fakePort{}
	d := NewDriver(port, "net", "pw", response)
	if !d.Initialize() {
		t.Fatal("Initialize failed")
	}
	port.feed("OK\r\nOK\r\nOK\r\n")
	driveUntil(t, d, func(p Phase) bool { return p == ConnectedToAp })
	if !d.Connected() {
		t.Fatal("expected Connected() after association")
	}
	port.written = nil
	return d, port
}

// Scenario 1: association happy path.
func TestScenarioAssociationHappyPath(t *testing.T) {
	port := &fakePort{}
	d := NewDriver(port, "net", "pw", make([]byte, 64))
	if !d.Initialize() {
		t.Fatal("Initialize failed")
	}
	port.feed("OK\r\nOK\r\nOK\r\n")

	phase := driveUntil(t, d, func(p Phase) bool { return p == ConnectedToAp })
	if phase != ConnectedToAp {
		t.Fatalf("phase = %s, want ConnectedToAp", phase)
	}
	if !d.Connected() {
		t.Fatal("expected Connected() to be true")
	}
	for _, want := range []string{"ATE0\r\n", "AT+CWMODE=1\r\n", `AT+CWJAP_CUR="net","pw"` + "\r\n"} {
		if !strings.Contains(port.writtenString(), want) {
			t.Errorf("expected driver to have written %q, got %q", want, port.writtenString())
		}
	}
}

// feedIPDChunks frames payload as one or more +IPD,<n>: chunks, each capped
// at maxPacket bytes, the way a real ESP8266 would split a large response.
func feedIPDChunks(port *fakePort, payload []byte, maxPacket int) {
	for len(payload) > 0 {
		n := len(payload)
		if n > maxPacket {
			n = maxPacket
		}
		chunk := payload[:n]
		payload = payload[n:]
		port.feed("+IPD,")
		port.feed(itoaForTest(n))
		port.feed(":")
		port.feed(string(chunk))
	}
}

func itoaForTest(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, byte(n%10)+'0')
		n /= 10
	}
	for l, r := 0, len(digits)-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}
	return string(digits)
}

// Scenario 2: single-packet GET.
func TestScenarioSinglePacketGet(t *testing.T) {
	response := make([]byte, 256)
	d, port := newAssociatedDriver(t, response)

	port.feed("OK\r\n") // CIPSTART
	port.feed("OK\r\n") // CIPSEND (consumed as noise by the +IPD, scan)
	feedIPDChunks(port, []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"), MaxResponsePacket)
	port.feed("OK\r\n") // CIPCLOSE

	d.Request(Request{Domain: "example.com", Path: "/", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Complete {
		t.Fatalf("phase = %s, want Complete (lastErr=%v)", phase, d.LastError())
	}
	if string(d.Response()) != "hello" {
		t.Fatalf("response = %q, want %q", d.Response(), "hello")
	}
	if !strings.Contains(port.writtenString(), "AT+CIPSTART=\"TCP\",\"example.com\",80") {
		t.Errorf("expected CIPSTART command, got %q", port.writtenString())
	}
}

// Scenario 3: multi-packet GET.
func TestScenarioMultiPacketGet(t *testing.T) {
	response := make([]byte, 4096)
	d, port := newAssociatedDriver(t, response)

	const contentLength = 3000
	body := make([]byte, contentLength)
	for i := range body {
		body[i] = byte('A' + i%26)
	}
	header := []byte("HTTP/1.1 200 OK\r\nContent-Length: 3000\r\n\r\n")
	full := append(append([]byte{}, header...), body...)

	port.feed("OK\r\n") // CIPSTART
	port.feed("OK\r\n") // CIPSEND
	feedIPDChunks(port, full, MaxResponsePacket)
	port.feed("OK\r\n") // CIPCLOSE

	d.Request(Request{Domain: "example.com", Path: "/big", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Complete {
		t.Fatalf("phase = %s, want Complete (lastErr=%v)", phase, d.LastError())
	}
	if len(d.Response()) != contentLength {
		t.Fatalf("response length = %d, want %d", len(d.Response()), contentLength)
	}
	if !bytes.Equal(d.Response(), body) {
		t.Fatal("response body does not match what was sent, or bytes arrived out of order")
	}
}

// Scenario 4: body too large for the response buffer.
func TestScenarioBodyTooLarge(t *testing.T) {
	response := make([]byte, 10)
	d, port := newAssociatedDriver(t, response)

	header := "HTTP/1.1 200 OK\r\nContent-Length: 11\r\n\r\n"
	port.feed("OK\r\n")
	port.feed("OK\r\n")
	feedIPDChunks(port, []byte(header), MaxResponsePacket)
	port.feed("OK\r\n") // CIPCLOSE after CloseConnectionFailure

	d.Request(Request{Domain: "example.com", Path: "/", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Failure {
		t.Fatalf("phase = %s, want Failure", phase)
	}
	if d.LastError() == nil {
		t.Fatal("expected LastError to be set")
	}
}

// Scenario 5: malformed header (missing Content-Length).
func TestScenarioMalformedHeader(t *testing.T) {
	response := make([]byte, 256)
	d, port := newAssociatedDriver(t, response)

	port.feed("OK\r\n")
	port.feed("OK\r\n")
	feedIPDChunks(port, []byte("HTTP/1.1 200 OK\r\n\r\nhello"), MaxResponsePacket)
	port.feed("OK\r\n")

	d.Request(Request{Domain: "example.com", Path: "/", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Failure {
		t.Fatalf("phase = %s, want Failure", phase)
	}
}

// Scenario 6: formatting overflow — the response buffer is too small to
// hold even the formatted request, so AT+CIPSEND must never be issued.
func TestScenarioFormattingOverflow(t *testing.T) {
	response := make([]byte, 8)
	d, port := newAssociatedDriver(t, response)

	port.feed("OK\r\n") // CIPSTART still happens before formatting is attempted
	port.feed("OK\r\n") // CIPCLOSE after CloseConnectionFailure

	d.Request(Request{Domain: "example.com", Path: "/a/very/long/path/that/does/not/fit", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Failure {
		t.Fatalf("phase = %s, want Failure", phase)
	}
	if strings.Contains(port.writtenString(), "AT+CIPSEND") {
		t.Errorf("AT+CIPSEND must not be issued when formatting overflows, got %q", port.writtenString())
	}
}

// Idempotence of terminal phases.
func TestTerminalPhasesAreSticky(t *testing.T) {
	response := make([]byte, 256)
	d, port := newAssociatedDriver(t, response)

	port.feed("OK\r\nOK\r\n")
	feedIPDChunks(port, []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"), MaxResponsePacket)
	port.feed("OK\r\n")

	d.Request(Request{Domain: "example.com", Path: "/", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete })
	if phase != Complete {
		t.Fatalf("phase = %s, want Complete", phase)
	}
	snapshot := append([]byte{}, d.Response()...)
	for i := 0; i < 5; i++ {
		if got := d.GetStatus(); got != Complete {
			t.Fatalf("GetStatus after Complete returned %s", got)
		}
	}
	if !bytes.Equal(d.Response(), snapshot) {
		t.Fatal("response buffer changed after reaching Complete")
	}
}

// ChangeAccessPoint must re-associate from the idle ConnectedToAp phase.
func TestChangeAccessPointReassociatesFromIdle(t *testing.T) {
	d, port := newAssociatedDriver(t, make([]byte, 64))

	port.feed("OK\r\n")
	d.ChangeAccessPoint("net2", "pw2")

	phase := driveUntil(t, d, func(p Phase) bool { return p == ConnectedToAp })
	if phase != ConnectedToAp {
		t.Fatalf("phase = %s, want ConnectedToAp", phase)
	}
	if !strings.Contains(port.writtenString(), `AT+CWJAP_CUR="net2","pw2"`) {
		t.Errorf("expected re-association command, got %q", port.writtenString())
	}
}

// ChangeAccessPoint must break stickiness out of Complete, not be a silent
// no-op (spec.md §3: Complete/Failure are sticky "until the next request or
// change_access_point").
func TestChangeAccessPointReassociatesFromComplete(t *testing.T) {
	response := make([]byte, 256)
	d, port := newAssociatedDriver(t, response)

	port.feed("OK\r\nOK\r\n")
	feedIPDChunks(port, []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"), MaxResponsePacket)
	port.feed("OK\r\n")
	d.Request(Request{Domain: "example.com", Path: "/", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Complete {
		t.Fatalf("phase = %s, want Complete (lastErr=%v)", phase, d.LastError())
	}

	port.written = nil
	port.feed("OK\r\n")
	d.ChangeAccessPoint("net2", "pw2")

	phase = driveUntil(t, d, func(p Phase) bool { return p == ConnectedToAp })
	if phase != ConnectedToAp {
		t.Fatalf("phase = %s, want ConnectedToAp after ChangeAccessPoint from Complete", phase)
	}
	if !d.Connected() {
		t.Fatal("expected Connected() after re-association")
	}
	if !strings.Contains(port.writtenString(), `AT+CWJAP_CUR="net2","pw2"`) {
		t.Errorf("expected re-association command, got %q", port.writtenString())
	}
}

// Same as above, but breaking out of Failure instead of Complete.
func TestChangeAccessPointReassociatesFromFailure(t *testing.T) {
	response := make([]byte, 10)
	d, port := newAssociatedDriver(t, response)

	header := "HTTP/1.1 200 OK\r\nContent-Length: 11\r\n\r\n"
	port.feed("OK\r\n")
	port.feed("OK\r\n")
	feedIPDChunks(port, []byte(header), MaxResponsePacket)
	port.feed("OK\r\n")
	d.Request(Request{Domain: "example.com", Path: "/", Port: "80"})
	phase := driveUntil(t, d, func(p Phase) bool { return p == Complete || p == Failure })
	if phase != Failure {
		t.Fatalf("phase = %s, want Failure", phase)
	}

	port.written = nil
	port.feed("OK\r\n")
	d.ChangeAccessPoint("net2", "pw2")

	phase = driveUntil(t, d, func(p Phase) bool { return p == ConnectedToAp })
	if phase != ConnectedToAp {
		t.Fatalf("phase = %s, want ConnectedToAp after ChangeAccessPoint from Failure", phase)
	}
	if !d.Connected() {
		t.Fatal("expected Connected() after re-association")
	}
}
