package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/channel"
	"github.com/fevtel/evdash-service-go/pkg/circuit"
	"github.com/fevtel/evdash-service-go/pkg/config"
	"github.com/fevtel/evdash-service-go/pkg/utils"
)

var (
	progressPath     string
	waitForBackend   bool
	skipVersionCheck bool
)

//nolint:funlen // by design
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [channels]",
		Short: "subscribes to telemetry channels and logs track positions",
		Long: `watch subscribes to the given channels (default: all four) and logs
status transitions and payload summaries. Lap progress is extracted from the
frames via JSONPath and mapped onto the active circuit geometry.`,
		ValidArgs: []string{"telemetry", "vehicle", "energy", "adas"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startWatch(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&config.URL,
		"url",
		"ws://localhost:8095",
		"base websocket URL of the backend")
	cmd.Flags().StringVar(&config.APIURL,
		"api-url",
		"http://localhost:8095",
		"base URL of the backend REST API")
	cmd.Flags().StringVar(&config.ConnectTimeout,
		"connect-timeout",
		"3s",
		"duration before an unopened channel falls back to demo data")
	cmd.Flags().StringVar(&config.ReconnectBase,
		"reconnect-base",
		"500ms",
		"base delay of the reconnect backoff")
	cmd.Flags().StringVar(&config.ReconnectMax,
		"reconnect-max",
		"4s",
		"cap of the reconnect backoff")
	cmd.Flags().StringVar(&config.DemoInterval,
		"demo-interval",
		"1s",
		"cadence of generated demo payloads")
	cmd.Flags().StringSliceVar(&config.ForceDemoHosts,
		"force-demo-host",
		[]string{"vercel.app"},
		"host suffixes that skip live connections and go straight to demo data")
	cmd.Flags().BoolVar(&config.AllowRepromotion,
		"allow-repromotion",
		false,
		"keep probing the live endpoint while in demo mode")
	cmd.Flags().StringVar(&config.ChannelsConfig,
		"channels-config",
		"",
		"yaml file with per-channel overrides (url, intervals, backoff)")
	cmd.Flags().StringVar(&progressPath,
		"progress-path",
		"",
		"JSONPath to the lap progress in a frame (default depends on the channel)")
	cmd.Flags().BoolVar(&waitForBackend,
		"wait-for-backend",
		false,
		"wait for the backend to accept TCP connections before subscribing")
	cmd.Flags().BoolVar(&skipVersionCheck,
		"skip-version-check",
		false,
		"do not verify the backend version")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() {
	var logger *log.Logger
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
}

//nolint:funlen,cyclop // by design
func startWatch(ctx context.Context, args []string) error {
	setupLogger()

	names := lo.Uniq(args)
	if len(names) == 0 {
		names = []string{"telemetry", "vehicle", "energy", "adas"}
	}

	overrides, err := loadChannelsConfig(config.ChannelsConfig)
	if err != nil {
		return err
	}

	if waitForBackend {
		if err := waitForBackendService(names[0], overrides); err != nil {
			return err
		}
	}

	api := circuit.NewClient(config.APIURL)
	if !skipVersionCheck {
		if err := verifyBackendVersion(ctx, api); err != nil {
			return err
		}
	}
	repo := circuit.NewRepository()
	syncActiveCircuit(ctx, api, repo)

	registry := channel.NewRegistry[any]()
	seed := time.Now().UnixNano()

	watchers := make([]*watcher, 0, len(names))
	for i, name := range names {
		spec, ok := channelSpecs[name]
		if !ok {
			return fmt.Errorf("unknown channel %q", name)
		}
		override := overrides.Channels[name]
		sup, err := registry.GetOrCreate(name, func() (*channel.Supervisor[any], error) {
			return buildSupervisor(name, spec, override, seed+int64(i))
		})
		if err != nil {
			return err
		}
		w, err := newWatcher(name, spec, override, sup, repo)
		if err != nil {
			return err
		}
		watchers = append(watchers, w)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wg := sync.WaitGroup{}
	for _, w := range watchers {
		wg.Add(1)
		go w.consume(wg.Done)
	}
	log.Info("watching channels", log.Any("channels", registry.Names()))

	<-runCtx.Done()
	log.Info("shutting down")
	for _, st := range registry.Statuses() {
		log.Info("final channel state",
			log.String("channel", st.Channel),
			log.Stringer("state", st.State),
			log.Bool("demo", st.Demo))
	}
	for _, w := range watchers {
		w.sub.Cancel()
	}
	wg.Wait()
	log.Info("Watch terminated")
	return nil
}

// waitForBackendService blocks until the resolved endpoint of the first
// requested channel accepts TCP connections.
func waitForBackendService(name string, overrides *channelsFile) error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	ep := resolverFor(channelSpecs[name], overrides.Channels[name]).Resolve()
	if ep.ForceDemo {
		log.Debug("demo host, not waiting for a backend")
		return nil
	}
	addr, _ := utils.ExtractFromWebsocketURL(ep.URL)
	if addr == "" {
		return fmt.Errorf("cannot derive a backend address from %s", ep.URL)
	}
	return utils.WaitForTCP(addr, timeout)
}

// verifyBackendVersion rejects backends older than this client supports.
// An unreachable health endpoint is not an error, the channels will funnel
// to demo data on their own.
func verifyBackendVersion(ctx context.Context, api *circuit.Client) error {
	health, err := api.Health(ctx)
	if err != nil {
		log.Warn("backend health not reachable", log.ErrorField(err))
		return nil
	}
	if !utils.CheckBackendVersion(health.Version) {
		return fmt.Errorf("backend version %s not supported (need %s or newer)",
			health.Version, utils.RequiredBackendVersion)
	}
	log.Debug("backend version ok", log.String("version", health.Version))
	return nil
}

// syncActiveCircuit mirrors the backend's active circuit into the local
// repository so extracted progress maps to the geometry the dashboard
// shows. Best effort, the built-in circuits remain the fallback.
func syncActiveCircuit(ctx context.Context, api *circuit.Client, repo *circuit.Repository) {
	res, err := api.Active(ctx)
	if err != nil {
		log.Warn("could not fetch the active circuit, using built-ins", log.ErrorField(err))
		return
	}
	m, err := res.Model()
	if err != nil {
		log.Warn("active circuit rejected", log.ErrorField(err))
		return
	}
	if err := repo.Register(m); err != nil {
		log.Warn("could not register the active circuit", log.ErrorField(err))
		return
	}
	if _, err := repo.Activate(m.ID); err != nil {
		log.Warn("could not activate the circuit", log.ErrorField(err))
		return
	}
	log.Info("tracking circuit", log.String("id", m.ID), log.String("name", m.Name))
}
