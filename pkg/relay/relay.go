// Package relay republishes outbound channel frames to an external broker
// so recorders and analytics tools can tap the stream without holding a
// websocket to the dashboard service.
package relay

// Relay publishes one frame per call. Implementations must be safe for
// concurrent use, the hubs publish from independent goroutines.
type Relay interface {
	Publish(channel string, data []byte) error
	Close()
}

// Nop discards every frame. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(string, []byte) error { return nil }
func (Nop) Close()                       {}
