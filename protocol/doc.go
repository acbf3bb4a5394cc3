// Package protocol defines the framed JSON wire protocol.
//
// Every frame is a JSON object carrying a "type" tag. Inbound frames
// decode into a closed set of typed variants via Decode; anything that
// is not valid JSON, carries an unknown type, or is missing a required
// field is malformed, and the transport treats malformed frames as
// connection errors.
//
// Outbound messages are constructed with the New* helpers, which pin the
// type tags. Conn abstracts the delivery side: Send is best-effort and
// never blocks, dropping the message when the peer is gone or slow.
package protocol
