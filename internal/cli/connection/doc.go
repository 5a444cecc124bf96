// Package connection carries one request and one response to a Config Store
// over a stream socket.
//
//   - address.go: endpoint address parsing (ipc, unix, tcp, multiaddr)
//   - session.go: single-exchange session with a per-request deadline
//
// Every message on the socket is a frame from the protocol package. A
// session is used for exactly one exchange and then closed; nothing is
// pooled or retried.
package connection
