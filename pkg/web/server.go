// Package web serves the demo backend: the four streaming websocket
// endpoints, the circuit API and the vehicle/charging control surface.
// Every frame comes from the pkg/demo generators, so the whole dashboard
// runs standalone.
package web

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/circuit"
	"github.com/fevtel/evdash-service-go/pkg/demo"
	"github.com/fevtel/evdash-service-go/pkg/relay"
)

const shutdownTimeout = 5 * time.Second

// Channel cadences, matching the rates the panels expect.
const (
	telemetryInterval = time.Second
	vehicleInterval   = time.Second / 60
	energyInterval    = 1500 * time.Millisecond
	adasInterval      = 500 * time.Millisecond
)

type (
	Server struct {
		addr      string
		tlsAddr   string
		tlsConfig *tls.Config
		repo      *circuit.Repository
		rel       relay.Relay
		l         *log.Logger
		seed      int64

		telemetry *demo.Telemetry
		vehicle   *demo.Vehicle
		energy    *demo.Energy
		adas      *demo.ADAS

		hubs map[string]*hub

		srv    *http.Server
		tlsSrv *http.Server
	}
	Option func(*Server)
)

func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithTLS adds a TLS listener on addr next to the plain one. The config
// usually comes from a cert provider with live reload.
func WithTLS(addr string, cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsAddr = addr
		s.tlsConfig = cfg
	}
}

func WithRepository(repo *circuit.Repository) Option {
	return func(s *Server) {
		s.repo = repo
	}
}

func WithRelay(rel relay.Relay) Option {
	return func(s *Server) {
		s.rel = rel
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.l = l
	}
}

// WithSeed fixes the generator seeds, mainly for tests.
func WithSeed(seed int64) Option {
	return func(s *Server) {
		s.seed = seed
	}
}

func New(opts ...Option) *Server {
	ret := &Server{
		addr: "localhost:8095",
		rel:  relay.Nop{},
		l:    log.Default().Named("web"),
		seed: time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.repo == nil {
		ret.repo = circuit.NewRepository()
	}

	ret.telemetry = demo.NewTelemetry(ret.seed)
	ret.vehicle = demo.NewVehicle(ret.seed + 1)
	ret.energy = demo.NewEnergy(ret.seed + 2)
	ret.adas = demo.NewADAS(ret.seed + 3)
	// the energy panel should show a live session out of the box
	ret.energy.StartCharging("dc_fast")

	ret.hubs = map[string]*hub{
		"telemetry": newHub("telemetry", telemetryInterval, tickFunc(ret.telemetry), ret.rel, ret.l),
		"vehicle":   newHub("vehicle", vehicleInterval, tickFunc(ret.vehicle), ret.rel, ret.l),
		"energy":    newHub("energy", energyInterval, tickFunc(ret.energy), ret.rel, ret.l),
		"adas":      newHub("adas", adasInterval, tickFunc(ret.adas), ret.rel, ret.l),
	}
	return ret
}

// Run starts the hubs and serves until ctx is cancelled or the listener
// fails. Shutdown order matters: the hubs close first, which drains the
// websocket handlers, then the HTTP server finishes the rest.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, cancelHubs := context.WithCancel(context.Background())
	defer cancelHubs()
	for _, h := range s.hubs {
		h.start(hubCtx)
	}

	handler := newCORS().Handler(s.Handler())
	//nolint:gosec // by design
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	errc := make(chan error, 2)
	go func() {
		errc <- s.srv.ListenAndServe()
	}()
	s.l.Info("server listening", log.String("addr", s.addr))

	if s.tlsAddr != "" && s.tlsConfig != nil {
		// h2 is negotiated via ALPN here, no h2c wrapper needed
		//nolint:gosec // by design
		s.tlsSrv = &http.Server{
			Addr:      s.tlsAddr,
			Handler:   handler,
			TLSConfig: s.tlsConfig,
		}
		go func() {
			errc <- s.tlsSrv.ListenAndServeTLS("", "")
		}()
		s.l.Info("server listening (tls)", log.String("addr", s.tlsAddr))
	}

	select {
	case err := <-errc:
		s.stopHubs()
		return err
	case <-ctx.Done():
	}

	s.l.Info("shutting down")
	s.stopHubs()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	if s.tlsSrv != nil {
		if s.tlsSrv.Shutdown(shutdownCtx) != nil {
			err = s.tlsSrv.Close()
		}
	}
	if s.srv.Shutdown(shutdownCtx) != nil {
		err = s.srv.Close()
	}
	return err
}

func (s *Server) stopHubs() {
	for _, h := range s.hubs {
		h.stop()
	}
}

// Handler builds the route table. Exposed separately so tests can mount
// it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/ws", s.wsHandler(s.hubs["telemetry"]))
	mux.Handle("/ws/vehicle", s.wsHandler(s.hubs["vehicle"]))
	mux.Handle("/ws/energy", s.wsHandler(s.hubs["energy"]))
	mux.Handle("/ws/adas", s.wsHandler(s.hubs["adas"]))

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/telemetry", s.handleLatest(s.hubs["telemetry"]))
	mux.HandleFunc("GET /api/vehicle", s.handleLatest(s.hubs["vehicle"]))
	mux.HandleFunc("GET /api/charging/state", s.handleLatest(s.hubs["energy"]))
	mux.HandleFunc("GET /api/adas/status", s.handleLatest(s.hubs["adas"]))

	mux.HandleFunc("POST /api/vehicle/power-map/{id}", s.handlePowerMap)
	mux.HandleFunc("POST /api/vehicle/regen-level/{level}", s.handleRegenLevel)
	mux.HandleFunc("POST /api/vehicle/attack-mode", s.handleAttackMode)
	mux.HandleFunc("POST /api/vehicle/pit-stop", s.handlePitStop)

	mux.HandleFunc("POST /api/charging/start", s.handleChargingStart)
	mux.HandleFunc("POST /api/charging/stop", s.handleChargingStop)
	mux.HandleFunc("POST /api/charging/ecu-reset", s.handleECUReset)

	mux.HandleFunc("GET /api/circuit/list", s.handleCircuitList)
	mux.HandleFunc("GET /api/circuit/active", s.handleCircuitActive)
	mux.HandleFunc("POST /api/circuit/activate/{id}", s.handleCircuitActivate)
	mux.HandleFunc("POST /api/circuit/analyze", s.handleCircuitAnalyze)

	return mux
}

func newCORS() *cors.Cors {
	// The dashboard frontend is served from a different origin during
	// development, so the CORS setup is very permissive.
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowOriginFunc: func(origin string) bool {
			// Allow all origins, which effectively disables CORS.
			return true
		},
		AllowedHeaders: []string{"*"},
		// Let browsers cache CORS information for longer, which reduces the
		// number of preflight requests.
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
