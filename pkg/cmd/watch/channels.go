package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/channel"
	"github.com/fevtel/evdash-service-go/pkg/config"
	"github.com/fevtel/evdash-service-go/pkg/demo"
)

// channelSpec holds the per-channel wiring: the websocket path on the
// backend, the default JSONPath to the lap progress (empty when the
// channel carries none) and the demo generator standing in for the live
// feed.
type channelSpec struct {
	path         string
	progressPath string
	demo         func(seed int64) channel.DemoSource[any]
}

var channelSpecs = map[string]channelSpec{
	"telemetry": {
		path:         "/ws",
		progressPath: "$.telemetrySync.carPosition",
		demo: func(seed int64) channel.DemoSource[any] {
			return demoSource(demo.NewTelemetry(seed))
		},
	},
	"vehicle": {
		path:         "/ws/vehicle",
		progressPath: "$.lap.progress",
		demo: func(seed int64) channel.DemoSource[any] {
			return demoSource(demo.NewVehicle(seed))
		},
	},
	"energy": {
		path: "/ws/energy",
		demo: func(seed int64) channel.DemoSource[any] {
			return demoSource(demo.NewEnergy(seed))
		},
	},
	"adas": {
		path: "/ws/adas",
		demo: func(seed int64) channel.DemoSource[any] {
			return demoSource(demo.NewADAS(seed))
		},
	},
}

// demoSource adapts a typed generator to the opaque payloads the watch
// pipeline works with. Frames are rendered to JSON and reparsed so demo
// payloads look exactly like live ones to the JSONPath extraction.
func demoSource[P any](gen demo.Generator[P]) channel.DemoFunc[any] {
	var prev *P
	return func(_ *any, elapsed time.Duration) any {
		next := gen.Tick(prev, elapsed)
		prev = &next
		data, err := json.Marshal(next)
		if err != nil {
			return nil
		}
		parsed, err := oj.Parse(data)
		if err != nil {
			return nil
		}
		return parsed
	}
}

type (
	// channelOverride is one entry of the channels config file. All values
	// are optional, empty fields keep the flag or built-in defaults.
	channelOverride struct {
		URL            string `yaml:"url"`
		ProgressPath   string `yaml:"progressPath"`
		DemoInterval   string `yaml:"demoInterval"`
		ConnectTimeout string `yaml:"connectTimeout"`
		ReconnectBase  string `yaml:"reconnectBase"`
		ReconnectMax   string `yaml:"reconnectMax"`
	}
	channelsFile struct {
		Channels map[string]channelOverride `yaml:"channels"`
	}
)

func loadChannelsConfig(path string) (*channelsFile, error) {
	ret := &channelsFile{}
	if path == "" {
		return ret, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("parsing channels config: %w", err)
	}
	return ret, nil
}

func resolverFor(spec channelSpec, override channelOverride) channel.HostResolver {
	return channel.HostResolver{
		BaseURL:          config.URL,
		Path:             spec.path,
		Override:         override.URL,
		DemoHostSuffixes: config.ForceDemoHosts,
	}
}

//nolint:whitespace // can't make both editor and linter happy
func buildSupervisor(
	name string,
	spec channelSpec,
	override channelOverride,
	seed int64,
) (*channel.Supervisor[any], error) {
	return channel.NewSupervisor(channel.Config[any]{
		Name:     name,
		Endpoint: resolverFor(spec, override),
		Dialer:   &channel.WebsocketDialer{},
		Decode:   func(data []byte) (any, error) { return oj.Parse(data) },
		Demo:     spec.demo(seed),
		DemoInterval: parseDuration(
			lo.CoalesceOrEmpty(override.DemoInterval, config.DemoInterval),
			channel.DefaultDemoInterval),
		ConnectTimeout: parseDuration(
			lo.CoalesceOrEmpty(override.ConnectTimeout, config.ConnectTimeout),
			channel.DefaultConnectTimeout),
		Backoff: channel.Backoff{
			Base: parseDuration(
				lo.CoalesceOrEmpty(override.ReconnectBase, config.ReconnectBase),
				channel.DefaultReconnectBase),
			Max: parseDuration(
				lo.CoalesceOrEmpty(override.ReconnectMax, config.ReconnectMax),
				channel.DefaultReconnectMax),
			Jitter: 0.1,
		},
		AllowRepromotion: config.AllowRepromotion,
	})
}

func parseDuration(value string, defaultVal time.Duration) time.Duration {
	if value == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Invalid duration value",
			log.String("value", value),
			log.ErrorField(err))
		return defaultVal
	}
	return d
}
