// Package channel keeps dashboard panels fed with data. A Supervisor owns
// one logical connection to a backend stream plus a demo source for the
// same payload shape. Panels subscribe and receive payload and status
// updates; reconnect scheduling and the one-shot demo fallback happen
// inside the supervisor.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fevtel/evdash-service-go/log"
)

const (
	DefaultConnectTimeout      = 3 * time.Second
	DefaultDemoInterval        = time.Second
	DefaultRepromotionInterval = 30 * time.Second
)

// DemoSource produces synthetic payloads while a channel runs in demo
// mode. Implementations keep an internal phase counter so output is
// reproducible when the phase is seeded.
type DemoSource[T any] interface {
	Tick(prev *T, elapsed time.Duration) T
}

// DemoFunc adapts a plain function to the DemoSource interface.
type DemoFunc[T any] func(prev *T, elapsed time.Duration) T

func (f DemoFunc[T]) Tick(prev *T, elapsed time.Duration) T { return f(prev, elapsed) }

// Update is what subscribers receive. HasPayload is false on pure status
// transitions.
type Update[T any] struct {
	Payload    T
	HasPayload bool
	Status     Status
}

// Status is a point-in-time snapshot of a supervisor. Attempt counts
// consecutive failed connection attempts since the last success.
type Status struct {
	Channel       string    `json:"channel"`
	State         State     `json:"state"`
	Demo          bool      `json:"demo"`
	Attempt       int       `json:"attempt"`
	Endpoint      string    `json:"endpoint,omitempty"`
	LastPayloadAt time.Time `json:"lastPayloadAt,omitzero"`
}

// Config parametrizes one named channel.
type Config[T any] struct {
	// Name identifies the channel (telemetry, vehicle, energy, adas).
	Name string
	// Endpoint derives the connection target, resolved again on every
	// attempt.
	Endpoint EndpointResolver
	// Dialer opens live connections. Defaults to a WebsocketDialer.
	Dialer Dialer
	// Decode turns a raw frame into a payload. Defaults to JSON decoding
	// into T. A failing frame is logged and dropped.
	Decode func([]byte) (T, error)
	// Demo produces synthetic payloads after fallback. Required.
	Demo DemoSource[T]
	// DemoInterval is the synthetic tick cadence.
	DemoInterval time.Duration
	// ConnectTimeout bounds the initial live funnel. When no connection
	// opens within it, the channel locks into demo mode.
	ConnectTimeout time.Duration
	// Backoff schedules reconnect attempts.
	Backoff Backoff
	// AllowRepromotion lets a demo-locked channel probe for a live
	// backend every RepromotionInterval. Off by default, a demo-locked
	// channel then stays on demo until it is torn down and resubscribed.
	AllowRepromotion    bool
	RepromotionInterval time.Duration
}

// Supervisor drives the state machine for one named channel. All state is
// owned by a single event loop goroutine that runs while at least one
// subscription is active. Once the last subscription is cancelled the
// loop tears down synchronously, leaving no timers, sockets or
// goroutines behind.
type Supervisor[T any] struct {
	cfg Config[T]
	log *log.Logger

	mu      sync.Mutex
	refs    int
	running bool
	cmds    chan command[T]

	stateGauge    atomic.Int64
	attemptGauge  atomic.Int64
	demoGauge     atomic.Int64
	listenerGauge atomic.Int64
	frameCount    atomic.Int64
}

// Subscription is one consumer's handle on a supervisor. C carries the
// latest update; when the consumer lags, stale intermediate updates are
// dropped rather than queued.
type Subscription[T any] struct {
	C <-chan Update[T]

	ch        chan Update[T]
	sup       *Supervisor[T]
	cancelled bool
}

type command[T any] struct {
	sub    chan Update[T]
	unsub  chan Update[T]
	status chan Status
	ack    chan struct{}
}

func NewSupervisor[T any](cfg Config[T]) (*Supervisor[T], error) {
	if cfg.Name == "" {
		return nil, errors.New("channel name is required")
	}
	if cfg.Endpoint == nil {
		return nil, errors.New("endpoint resolver is required")
	}
	if cfg.Demo == nil {
		return nil, errors.New("demo source is required")
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &WebsocketDialer{}
	}
	if cfg.Decode == nil {
		cfg.Decode = decodeJSON[T]
	}
	if cfg.DemoInterval <= 0 {
		cfg.DemoInterval = DefaultDemoInterval
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Backoff.Base <= 0 {
		cfg.Backoff.Base = DefaultReconnectBase
	}
	if cfg.Backoff.Max <= 0 {
		cfg.Backoff.Max = DefaultReconnectMax
	}
	if cfg.RepromotionInterval <= 0 {
		cfg.RepromotionInterval = DefaultRepromotionInterval
	}
	ret := &Supervisor[T]{
		cfg: cfg,
		log: log.Default().Named("channel." + cfg.Name),
	}
	ret.setupMetrics()
	return ret, nil
}

func decodeJSON[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func (s *Supervisor[T]) Name() string { return s.cfg.Name }

// Subscribe registers a consumer. The first subscription starts the event
// loop and with it the live connection funnel. The new subscription
// immediately receives a snapshot with the current status and, if
// present, the last payload.
func (s *Supervisor[T]) Subscribe() *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.cmds = make(chan command[T])
		s.running = true
		go s.run(s.cmds)
	}
	s.refs++
	ch := make(chan Update[T], 1)
	s.cmds <- command[T]{sub: ch}
	return &Subscription[T]{C: ch, ch: ch, sup: s}
}

// Cancel removes the subscription. Cancelling the last subscription tears
// the supervisor down before returning: connection closed, all timers
// stopped. Cancel is idempotent.
func (sub *Subscription[T]) Cancel() {
	s := sub.sup
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.cancelled {
		return
	}
	sub.cancelled = true
	ack := make(chan struct{})
	s.cmds <- command[T]{unsub: sub.ch, ack: ack}
	<-ack
	s.refs--
	if s.refs == 0 {
		s.running = false
	}
}

// Status returns the current snapshot. An idle supervisor without
// subscribers reports StateIdle.
func (s *Supervisor[T]) Status() Status {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return Status{Channel: s.cfg.Name, State: StateIdle}
	}
	reply := make(chan Status, 1)
	s.cmds <- command[T]{status: reply}
	s.mu.Unlock()
	return <-reply
}

func (s *Supervisor[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("evdash.channel")
	register := func(metricName, desc, unit string, valueProvider func() int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit(unit),

			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(valueProvider(),
					metric.WithAttributes(attribute.String("channel", s.cfg.Name)),
				)
				return nil
			})); err != nil {
			s.log.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	type data struct {
		name  string
		desc  string
		unit  string
		value func() int64
	}
	for _, d := range []*data{
		{
			"evdash.channel.state", "Current channel state code", "{state}",
			s.stateGauge.Load,
		},
		{
			"evdash.channel.attempt", "Failed connection attempts since last success", "{count}",
			s.attemptGauge.Load,
		},
		{
			"evdash.channel.demo", "1 while the channel runs on demo data", "{flag}",
			s.demoGauge.Load,
		},
		{
			"evdash.channel.subscribers", "Number of active subscriptions", "{count}",
			s.listenerGauge.Load,
		},
		{
			"evdash.channel.frames", "Number of decoded payload frames", "{count}",
			s.frameCount.Load,
		},
	} {
		register(d.name, d.desc, d.unit, d.value)
	}
}

type dialOutcome struct {
	gen  int
	conn Conn
	err  error
}

// supervisorLoop holds the state owned by the event loop goroutine.
// Nothing outside the loop touches these fields.
type supervisorLoop[T any] struct {
	sup *Supervisor[T]
	cfg Config[T]
	log *log.Logger

	state         State
	attempt       int
	demo          bool
	endpoint      string
	lastPayload   *T
	lastPayloadAt time.Time

	listeners []chan Update[T]

	conn       Conn
	dialGen    int
	dialc      chan dialOutcome
	dialCancel context.CancelFunc

	fallback  *time.Timer
	fallbackC <-chan time.Time

	reconnect  *time.Timer
	reconnectC <-chan time.Time

	demoTicker *time.Ticker
	demoC      <-chan time.Time
	lastTick   time.Time

	probe  *time.Timer
	probeC <-chan time.Time
}

func (s *Supervisor[T]) run(cmds chan command[T]) {
	l := &supervisorLoop[T]{
		sup:   s,
		cfg:   s.cfg,
		log:   s.log,
		state: StateIdle,
		dialc: make(chan dialOutcome),
	}
	l.begin()
	for {
		var frames <-chan Frame
		var closedc <-chan error
		if l.conn != nil {
			frames = l.conn.Frames()
			closedc = l.conn.Closed()
		}
		select {
		case cmd := <-cmds:
			if done := l.handleCommand(cmd); done {
				return
			}
		case out := <-l.dialc:
			l.handleDialOutcome(out)
		case f := <-frames:
			l.handleFrame(f)
		case err := <-closedc:
			l.handleClosed(err)
		case <-l.fallbackC:
			l.handleFallback()
		case <-l.reconnectC:
			l.reconnectC = nil
			l.reconnect = nil
			l.connect()
		case now := <-l.demoC:
			l.handleDemoTick(now)
		case <-l.probeC:
			l.probeC = nil
			l.probe = nil
			l.connect()
		}
	}
}

// begin arms the fallback timer and starts the first connection attempt.
// The timer spans the whole initial funnel including in-window retries;
// it is armed exactly once and disarmed for good on the first open.
func (l *supervisorLoop[T]) begin() {
	l.fallback = time.NewTimer(l.cfg.ConnectTimeout)
	l.fallbackC = l.fallback.C
	l.connect()
}

func (l *supervisorLoop[T]) connect() {
	ep := l.cfg.Endpoint.Resolve()
	l.endpoint = ep.URL
	if ep.ForceDemo {
		if l.demo {
			if l.cfg.AllowRepromotion {
				l.armProbe()
			}
			return
		}
		l.log.Info("endpoint forces demo mode", log.String("url", ep.URL))
		l.enterDemo()
		return
	}
	if !l.demo {
		// a repromotion probe keeps the published state on DEMO
		l.setState(StateConnecting)
		l.publishStatus()
	}
	l.dialGen++
	gen := l.dialGen
	ctx, cancel := context.WithCancel(context.Background())
	l.dialCancel = cancel
	dialer := l.cfg.Dialer
	url := ep.URL
	go func() {
		conn, err := dialer.Dial(ctx, url)
		select {
		case l.dialc <- dialOutcome{gen: gen, conn: conn, err: err}:
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
		}
	}()
}

func (l *supervisorLoop[T]) handleDialOutcome(out dialOutcome) {
	if out.gen != l.dialGen {
		// attempt was abandoned in the meantime
		if out.conn != nil {
			out.conn.Close()
		}
		return
	}
	l.dialCancel = nil
	if out.err != nil {
		if l.demo {
			l.log.Debug("live probe failed", log.ErrorField(out.err))
			l.armProbe()
			return
		}
		l.log.Warn("connect failed",
			log.String("url", l.endpoint), log.ErrorField(out.err))
		l.scheduleReconnect()
		return
	}
	l.conn = out.conn
	l.attempt = 0
	if l.demo {
		l.log.Info("live backend reachable again, leaving demo mode",
			log.String("url", l.endpoint))
		l.leaveDemo()
	}
	l.disarmFallback()
	l.setState(StateOpen)
	l.log.Info("channel open", log.String("url", l.endpoint))
	l.publishStatus()
}

func (l *supervisorLoop[T]) handleFrame(f Frame) {
	payload, err := l.cfg.Decode(f.Data)
	if err != nil {
		perr := &ParseError{Channel: l.cfg.Name, Err: err}
		l.log.Warn("dropping frame", log.ErrorField(perr))
		return
	}
	l.lastPayload = &payload
	l.lastPayloadAt = f.At
	l.sup.frameCount.Add(1)
	l.publishPayload(payload)
}

func (l *supervisorLoop[T]) handleClosed(err error) {
	l.closeConn()
	l.setState(StateClosed)
	if err != nil {
		l.log.Warn("connection lost",
			log.String("url", l.endpoint), log.ErrorField(err))
	} else {
		l.log.Info("connection closed", log.String("url", l.endpoint))
	}
	l.publishStatus()
	l.scheduleReconnect()
}

func (l *supervisorLoop[T]) handleFallback() {
	l.fallback = nil
	l.fallbackC = nil
	l.log.Info("no live connection within timeout, falling back to demo data",
		log.Duration("timeout", l.cfg.ConnectTimeout))
	l.enterDemo()
}

func (l *supervisorLoop[T]) handleDemoTick(now time.Time) {
	elapsed := now.Sub(l.lastTick)
	l.lastTick = now
	l.emitDemo(elapsed)
}

func (l *supervisorLoop[T]) handleCommand(cmd command[T]) bool {
	switch {
	case cmd.sub != nil:
		l.listeners = append(l.listeners, cmd.sub)
		l.sup.listenerGauge.Store(int64(len(l.listeners)))
		l.pushTo(cmd.sub, l.currentUpdate())
	case cmd.unsub != nil:
		for i, ch := range l.listeners {
			if ch == cmd.unsub {
				l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
				close(ch)
				break
			}
		}
		l.sup.listenerGauge.Store(int64(len(l.listeners)))
		if len(l.listeners) == 0 {
			l.teardown()
			close(cmd.ack)
			return true
		}
		close(cmd.ack)
	case cmd.status != nil:
		cmd.status <- l.snapshot()
	}
	return false
}

func (l *supervisorLoop[T]) scheduleReconnect() {
	delay := l.cfg.Backoff.Delay(l.attempt)
	l.attempt++
	l.setState(StateReconnectScheduled)
	l.log.Info("reconnect scheduled",
		log.Duration("delay", delay),
		log.Int("attempt", l.attempt))
	l.publishStatus()
	l.reconnect = time.NewTimer(delay)
	l.reconnectC = l.reconnect.C
}

func (l *supervisorLoop[T]) enterDemo() {
	l.cancelDial()
	l.closeConn()
	l.disarmFallback()
	l.stopReconnect()
	l.demo = true
	l.attempt = 0
	l.setState(StateDemo)
	l.publishStatus()
	l.demoTicker = time.NewTicker(l.cfg.DemoInterval)
	l.demoC = l.demoTicker.C
	l.lastTick = time.Now()
	l.emitDemo(0)
	if l.cfg.AllowRepromotion {
		l.armProbe()
	}
}

func (l *supervisorLoop[T]) leaveDemo() {
	l.demo = false
	if l.demoTicker != nil {
		l.demoTicker.Stop()
		l.demoTicker = nil
		l.demoC = nil
	}
	l.stopProbe()
}

func (l *supervisorLoop[T]) emitDemo(elapsed time.Duration) {
	payload := l.cfg.Demo.Tick(l.lastPayload, elapsed)
	l.lastPayload = &payload
	l.lastPayloadAt = time.Now()
	l.publishPayload(payload)
}

func (l *supervisorLoop[T]) teardown() {
	l.cancelDial()
	l.closeConn()
	l.disarmFallback()
	l.stopReconnect()
	l.leaveDemo()
	l.setState(StateIdle)
	l.log.Debug("channel torn down")
}

func (l *supervisorLoop[T]) cancelDial() {
	if l.dialCancel != nil {
		l.dialCancel()
		l.dialCancel = nil
	}
	// invalidate any outcome still in flight
	l.dialGen++
}

func (l *supervisorLoop[T]) closeConn() {
	if l.conn == nil {
		return
	}
	if err := l.conn.Close(); err != nil {
		l.log.Debug("closing connection", log.ErrorField(err))
	}
	l.conn = nil
}

func (l *supervisorLoop[T]) disarmFallback() {
	if l.fallback != nil {
		l.fallback.Stop()
		l.fallback = nil
		l.fallbackC = nil
	}
}

func (l *supervisorLoop[T]) stopReconnect() {
	if l.reconnect != nil {
		l.reconnect.Stop()
		l.reconnect = nil
		l.reconnectC = nil
	}
}

func (l *supervisorLoop[T]) armProbe() {
	l.probe = time.NewTimer(l.cfg.RepromotionInterval)
	l.probeC = l.probe.C
}

func (l *supervisorLoop[T]) stopProbe() {
	if l.probe != nil {
		l.probe.Stop()
		l.probe = nil
		l.probeC = nil
	}
}

func (l *supervisorLoop[T]) setState(s State) {
	l.state = s
	l.sup.stateGauge.Store(int64(s))
	l.sup.attemptGauge.Store(int64(l.attempt))
	if l.demo {
		l.sup.demoGauge.Store(1)
	} else {
		l.sup.demoGauge.Store(0)
	}
}

func (l *supervisorLoop[T]) snapshot() Status {
	return Status{
		Channel:       l.cfg.Name,
		State:         l.state,
		Demo:          l.demo,
		Attempt:       l.attempt,
		Endpoint:      l.endpoint,
		LastPayloadAt: l.lastPayloadAt,
	}
}

func (l *supervisorLoop[T]) currentUpdate() Update[T] {
	u := Update[T]{Status: l.snapshot()}
	if l.lastPayload != nil {
		u.Payload = *l.lastPayload
		u.HasPayload = true
	}
	return u
}

func (l *supervisorLoop[T]) publishPayload(payload T) {
	u := Update[T]{Payload: payload, HasPayload: true, Status: l.snapshot()}
	for _, ch := range l.listeners {
		l.pushTo(ch, u)
	}
}

func (l *supervisorLoop[T]) publishStatus() {
	u := l.currentUpdate()
	for _, ch := range l.listeners {
		l.pushTo(ch, u)
	}
}

// pushTo keeps only the latest update for a lagging listener, a full
// buffer is drained before the new value goes in.
func (l *supervisorLoop[T]) pushTo(ch chan Update[T], u Update[T]) {
	for {
		select {
		case ch <- u:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
