package web

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/demo"
	"github.com/fevtel/evdash-service-go/pkg/relay"
	"github.com/fevtel/evdash-service-go/pkg/utils/broadcast"
)

// hub owns one channel: a generator ticked at the channel cadence, the
// broadcast fan-out to websocket clients and the relay tap. The generator
// is only touched under mu, control endpoints mutate it through Do.
type hub struct {
	channel  string
	interval time.Duration

	mu   sync.Mutex
	tick func(elapsed time.Duration) ([]byte, error)

	source chan []byte
	bcst   broadcast.BroadcastServer[[]byte]
	rel    relay.Relay
	l      *log.Logger

	latestMu sync.RWMutex
	latest   []byte

	cancel context.CancelFunc
	done   chan struct{}
}

//nolint:whitespace // can't make both editor and linter happy
func newHub(
	channel string,
	interval time.Duration,
	tick func(time.Duration) ([]byte, error),
	rel relay.Relay,
	l *log.Logger,
) *hub {
	source := make(chan []byte)
	return &hub{
		channel:  channel,
		interval: interval,
		tick:     tick,
		source:   source,
		bcst:     broadcast.NewBroadcastServer(channel, "web."+channel, source),
		rel:      rel,
		l:        l.Named(channel),
		done:     make(chan struct{}),
	}
}

// tickFunc adapts a typed generator into the hub's frame producer.
func tickFunc[T any](gen demo.Generator[T]) func(time.Duration) ([]byte, error) {
	var prev *T
	return func(elapsed time.Duration) ([]byte, error) {
		next := gen.Tick(prev, elapsed)
		prev = &next
		return json.Marshal(next)
	}
}

func (h *hub) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	// first frame before the loop starts so Latest never comes up empty
	h.emit(h.interval)
	go h.run(runCtx)
}

func (h *hub) stop() {
	h.cancel()
	<-h.done
	h.bcst.Close()
}

func (h *hub) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.emit(now.Sub(last))
			last = now
		}
	}
}

func (h *hub) emit(elapsed time.Duration) {
	h.mu.Lock()
	data, err := h.tick(elapsed)
	h.mu.Unlock()
	if err != nil {
		h.l.Error("frame encode failed", log.ErrorField(err))
		return
	}

	h.latestMu.Lock()
	h.latest = data
	h.latestMu.Unlock()

	h.source <- data
	if err := h.rel.Publish(h.channel, data); err != nil {
		h.l.Warn("relay publish failed", log.ErrorField(err))
	}
}

// Latest returns the most recent frame, nil before the first tick.
func (h *hub) Latest() []byte {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.latest
}

// Do runs fn while the generator is not ticking.
func (h *hub) Do(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}
