package watch

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/samber/lo"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/channel"
	"github.com/fevtel/evdash-service-go/pkg/circuit"
)

// watcher consumes one subscription: status transitions at info level,
// payload summaries at debug level. When a progress path is configured the
// lap progress is pulled out of the frame and mapped onto the active
// circuit.
type watcher struct {
	name string
	sub  *channel.Subscription[any]
	expr jp.Expr
	repo *circuit.Repository
	l    *log.Logger
}

//nolint:whitespace // can't make both editor and linter happy
func newWatcher(
	name string,
	spec channelSpec,
	override channelOverride,
	sup *channel.Supervisor[any],
	repo *circuit.Repository,
) (*watcher, error) {
	path := lo.CoalesceOrEmpty(override.ProgressPath, progressPath, spec.progressPath)
	var expr jp.Expr
	if path != "" {
		var err error
		if expr, err = jp.ParseString(path); err != nil {
			return nil, fmt.Errorf("invalid progress path %q: %w", path, err)
		}
	}
	return &watcher{
		name: name,
		sub:  sup.Subscribe(),
		expr: expr,
		repo: repo,
		l:    log.Default().Named("watch").Named(name),
	}, nil
}

// consume runs until the subscription channel is closed by Cancel.
func (w *watcher) consume(done func()) {
	defer done()
	var last channel.Status
	for u := range w.sub.C {
		if u.Status.State != last.State || u.Status.Demo != last.Demo {
			w.l.Info("channel status",
				log.Stringer("state", u.Status.State),
				log.Bool("demo", u.Status.Demo),
				log.Int("attempt", u.Status.Attempt),
				log.String("endpoint", u.Status.Endpoint))
		}
		last = u.Status
		if u.HasPayload {
			w.logPayload(u.Payload)
		}
	}
}

func (w *watcher) logPayload(payload any) {
	fields := []log.Field{}
	if m, ok := payload.(map[string]any); ok {
		fields = append(fields, log.Int("keys", len(m)))
	}
	if w.expr != nil {
		if res := w.expr.Get(payload); len(res) > 0 {
			if progress, ok := asFloat(res[0]); ok {
				fields = append(fields, log.Float64("progress", progress))
				if active := w.repo.Active(); active != nil {
					if pos, err := active.PositionAt(progress); err == nil {
						fields = append(fields,
							log.Float64("x", pos.X),
							log.Float64("y", pos.Y),
							log.Int("sector", pos.Sector))
					}
				}
			}
		}
	}
	w.l.Debug("payload", fields...)
}

// asFloat widens the two number types oj produces for JSON numbers.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}
