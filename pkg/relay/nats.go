package relay

import (
	"github.com/nats-io/nats.go"

	"github.com/fevtel/evdash-service-go/log"
)

type (
	NatsRelay struct {
		conn *nats.Conn
		l    *log.Logger
	}
	NatsOption func(*NatsRelay)
)

var _ Relay = (*NatsRelay)(nil)

// NewNatsRelay connects to the broker at url. Frames for channel X go to
// the subject telemetry.X.
func NewNatsRelay(url string, opts ...NatsOption) (*NatsRelay, error) {
	ret := &NatsRelay{
		l: log.Default().Named("relay"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	conn, err := nats.Connect(url,
		nats.Name("evdash"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	ret.conn = conn
	ret.l.Info("connected to broker", log.String("url", url))
	return ret, nil
}

func WithNatsLogger(l *log.Logger) NatsOption {
	return func(r *NatsRelay) {
		r.l = l
	}
}

func (r *NatsRelay) Publish(channel string, data []byte) error {
	return r.conn.Publish(subject(channel), data)
}

func (r *NatsRelay) Close() {
	r.conn.Close()
}

func subject(channel string) string {
	return "telemetry." + channel
}
