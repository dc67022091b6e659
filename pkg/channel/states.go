package channel

import "encoding/json"

// State is the lifecycle position of a named channel. StateOpen and
// StateDemo are the only states in which subscribers receive payload
// updates on a regular cadence, all others hold the last known payload.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateReconnectScheduled
	StateDemo
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	case StateReconnectScheduled:
		return "RECONNECT_SCHEDULED"
	case StateDemo:
		return "DEMO"
	}
	return "UNKNOWN"
}

// MarshalJSON renders the state as its badge string.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
