// Package esphttp drives an ESP8266 Wi-Fi module over a non-blocking UART
// transport, from power-on through access-point association to executing
// HTTP/1.1 GET requests and delivering response bodies into a
// caller-supplied buffer.
//
// The driver is a cooperative, suspension-free state machine: each call to
// GetStatus performs at most one reader step and possibly one phase
// transition, and never blocks waiting for the network. Callers own the
// serial.Port and the response buffer and are responsible for calling
// GetStatus repeatedly until it returns a terminal Phase.
package esphttp
