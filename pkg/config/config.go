package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel        string // sets the log level (zap log level values)
	LogFormat       string // text vs json
	LogFilter       string // zapfilter rules applied to the default logger
	WaitForServices string // duration to wait for other services to be ready

	ServerAddr     string // listen addr for the demo backend
	NatsURL        string // if set, outbound frames are republished to this NATS server
	CircuitDir     string // directory with circuit analysis results to load and watch
	ChannelsConfig string // path to a channels config file (yaml)

	TLSServerAddr     string // listen addr for the TLS endpoint of the demo backend
	TLSCertFile       string // path to TLS certificate
	TLSKeyFile        string // path to TLS key
	TLSCAFile         string // path to TLS CA
	TraefikCerts      string // path to traefik certs file
	TraefikCertDomain string // the domain to lookup within the traefik certs

	URL              string   // base URL of the live backend (ws[s]://host[:port])
	APIURL           string   // base URL of the circuit REST API (http[s]://host[:port])
	ConnectTimeout   string   // duration before an unopened channel falls back to demo data
	ReconnectBase    string   // base delay for the reconnect backoff
	ReconnectMax     string   // cap for the reconnect backoff
	DemoInterval     string   // cadence of generated demo payloads
	ForceDemoHosts   []string // host suffixes that skip live connections entirely
	AllowRepromotion bool     // if true, demo mode keeps probing the live endpoint

	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint that receives open telemetry data
	TelemetryStdout   bool   // write telemetry to stdout instead of an OTLP endpoint
	ProfilingPort     int    // port for profiling
)
