package channel

import "fmt"

// ConnectionError wraps a transport level failure (dial, handshake or a
// broken socket). It is never fatal: the supervisor retries with backoff
// and reflects the situation in Status only.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ParseError marks a single undecodable inbound frame. The frame is
// dropped and the channel stays open.
type ParseError struct {
	Channel string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("undecodable frame on channel %s: %v", e.Channel, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
