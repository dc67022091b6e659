package serve

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/circuit"
	"github.com/fevtel/evdash-service-go/pkg/config"
	"github.com/fevtel/evdash-service-go/pkg/relay"
	"github.com/fevtel/evdash-service-go/pkg/utils"
	"github.com/fevtel/evdash-service-go/pkg/web"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "starts the demo backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"localhost:8095",
		"backend listen address")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"republish outbound frames to this NATS server (telemetry.<channel>)")
	cmd.Flags().StringVar(&config.CircuitDir,
		"circuit-dir",
		"",
		"directory with circuit analysis results to load and watch")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().BoolVar(&config.TelemetryStdout,
		"telemetry-stdout",
		false,
		"write telemetry data to stdout instead of an OTLP endpoint")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.TLSServerAddr,
		"tls-addr",
		"",
		"additional TLS listen address (requires a certificate source)")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"file containing the TLS certificate")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"file containing the TLS private key")
	cmd.Flags().StringVar(&config.TLSCAFile,
		"tls-ca",
		"",
		"file containing the TLS root CA")
	cmd.Flags().StringVar(&config.TraefikCerts,
		"traefik-certs",
		"",
		"file containing the traefik acme certificates")
	cmd.Flags().StringVar(&config.TraefikCertDomain,
		"traefik-cert-domain",
		"",
		"domain to look up within the traefik acme certificates")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

//nolint:funlen,cyclop // by design
func startServer(ctx context.Context) error {
	var logger *log.Logger
	var telemetry *config.Telemetry
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter != "" {
		logger = logger.WithFilters(config.LogFilter)
	}

	log.ResetDefault(logger)

	log.Debug("Config:",
		log.String("addr", config.ServerAddr),
		log.String("natsUrl", config.NatsURL),
		log.String("circuitDir", config.CircuitDir),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	waitForRequiredServices()

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(context.Background()); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	repo := circuit.NewRepository(circuit.WithLogger(logger))
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.CircuitDir != "" {
		loader := circuit.NewLoader(repo, config.CircuitDir)
		count, err := loader.LoadAll()
		if err != nil {
			log.Error("could not load circuit dir", log.ErrorField(err))
			return err
		}
		log.Info("circuits loaded",
			log.Int("count", count),
			log.String("dir", config.CircuitDir))
		go func() {
			if err := loader.Watch(runCtx); err != nil {
				log.Warn("circuit watcher stopped", log.ErrorField(err))
			}
		}()
	}

	var rel relay.Relay = relay.Nop{}
	if config.NatsURL != "" {
		natsRelay, err := relay.NewNatsRelay(config.NatsURL)
		if err != nil {
			log.Error("could not connect to NATS", log.ErrorField(err))
			return err
		}
		defer natsRelay.Close()
		rel = natsRelay
	}

	opts := []web.Option{
		web.WithAddr(config.ServerAddr),
		web.WithRepository(repo),
		web.WithRelay(rel),
		web.WithLogger(logger),
	}
	if config.TLSServerAddr != "" {
		if tlsCfg := newTLSConfigProvider(runCtx); tlsCfg != nil {
			opts = append(opts, web.WithTLS(config.TLSServerAddr, tlsCfg))
		} else {
			log.Warn("no usable certificate source, TLS listener disabled",
				log.String("addr", config.TLSServerAddr))
		}
	}
	srv := web.New(opts...)

	log.Info("Starting server")
	setupGoRoutinesDump()

	err := srv.Run(runCtx)
	if telemetry != nil {
		telemetry.Shutdown()
	}
	if err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}
	log.Info("Server terminated")
	return nil
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func waitForRequiredServices() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}

	wg := sync.WaitGroup{}
	checkTcp := func(addr string) {
		if err = utils.WaitForTCP(addr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
		wg.Done()
	}

	if natsAddr := utils.ExtractFromNatsURL(config.NatsURL); natsAddr != "" {
		wg.Add(1)
		go checkTcp(natsAddr)
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	log.Debug("Required services are available")
}
