package channel

import (
	"strings"

	"github.com/samber/lo"

	"github.com/fevtel/evdash-service-go/pkg/utils"
)

// Endpoint is a resolved connection target. ForceDemo short-circuits the
// live funnel, the supervisor goes straight to demo mode without dialing.
type Endpoint struct {
	URL       string
	ForceDemo bool
}

// EndpointResolver derives the connection target from the runtime
// environment. It is an injected strategy so tests can substitute it.
type EndpointResolver interface {
	Resolve() Endpoint
}

// EndpointResolverFunc adapts a plain function to the interface.
type EndpointResolverFunc func() Endpoint

func (f EndpointResolverFunc) Resolve() Endpoint { return f() }

// StaticEndpoint always resolves to the given URL.
func StaticEndpoint(url string) EndpointResolver {
	return EndpointResolverFunc(func() Endpoint { return Endpoint{URL: url} })
}

// HostResolver builds the channel URL from a base websocket URL plus a
// channel path. A non-empty Override replaces the base. Targets whose
// hostname ends in one of the DemoHostSuffixes force demo mode: those are
// static hosting domains with no backend behind them.
type HostResolver struct {
	BaseURL          string
	Path             string
	Override         string
	DemoHostSuffixes []string
}

func (r HostResolver) Resolve() Endpoint {
	base := r.BaseURL
	if r.Override != "" {
		base = r.Override
	}
	url := strings.TrimRight(base, "/") + r.Path
	host := strings.ToLower(utils.HostFromWebsocketURL(url))
	forced := host != "" && lo.SomeBy(r.DemoHostSuffixes, func(suffix string) bool {
		return strings.HasSuffix(host, strings.ToLower(suffix))
	})
	return Endpoint{URL: url, ForceDemo: forced}
}
