// Package circuit manages the set of known track models and the active
// selection used by the dashboard panels.
package circuit

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/track"
)

// ErrNotFound is returned when a circuit id is not registered.
var ErrNotFound = errors.New("circuit not found")

// DefaultModelID is the id of the built-in model that is always present.
const DefaultModelID = "silverstone"

// ChangeType describes what happened to the repository.
type ChangeType int

const (
	ModelRegistered ChangeType = iota
	ModelActivated
)

// ChangeEvent is delivered to OnChange listeners after the repository
// state has been updated.
type ChangeEvent struct {
	Type  ChangeType
	Model *track.Model
}

// Summary is the list representation of a registered circuit.
//
//nolint:tagliatelle // client compatibility
type Summary struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metrics  SummaryMetrics `json:"metrics"`
	IsActive bool           `json:"is_active"`
}

//nolint:tagliatelle // client compatibility
type SummaryMetrics struct {
	LengthM float64 `json:"length_m"`
	Corners int     `json:"corners"`
}

// Repository holds immutable track models keyed by id plus the active
// selection. The built-in defaults are seeded at construction, so Active
// never returns nil. Models are swapped wholesale on Register.
type Repository struct {
	mu        sync.RWMutex
	models    map[string]*track.Model
	activeID  string
	listeners []listener
	nextToken int
	log       *log.Logger
}

type listener struct {
	token int
	fn    func(ChangeEvent)
}

type Option func(*Repository)

func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithModels registers additional models at construction time.
func WithModels(models ...*track.Model) Option {
	return func(r *Repository) {
		for _, m := range models {
			r.models[m.ID] = m
		}
	}
}

// NewRepository creates a repository seeded with the built-in circuits and
// the default model active.
func NewRepository(opts ...Option) *Repository {
	ret := &Repository{
		models: map[string]*track.Model{},
		log:    log.Default().Named("circuit"),
	}
	ret.models[DefaultModelID] = track.Silverstone()
	fsae := track.FSAEThailand()
	ret.models[fsae.ID] = fsae
	ret.activeID = DefaultModelID
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Register adds or replaces a model. Replacement is whole-object: callers
// holding the previous model keep a consistent snapshot.
func (r *Repository) Register(m *track.Model) error {
	if m == nil || m.ID == "" {
		return errors.New("model must have an id")
	}
	r.mu.Lock()
	r.models[m.ID] = m
	r.mu.Unlock()
	r.log.Debug("registered circuit",
		log.String("id", m.ID),
		log.Int("waypoints", len(m.Waypoints)))
	r.notify(ChangeEvent{Type: ModelRegistered, Model: m})
	return nil
}

// Activate makes the model with the given id the active one and returns
// it. The swap is atomic: readers observe either the previous or the new
// selection, never a partial state.
func (r *Repository) Activate(id string) (*track.Model, error) {
	r.mu.Lock()
	m, ok := r.models[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	r.activeID = id
	r.mu.Unlock()
	r.log.Info("activated circuit", log.String("id", id))
	r.notify(ChangeEvent{Type: ModelActivated, Model: m})
	return m, nil
}

// Active returns the currently active model.
func (r *Repository) Active() *track.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[r.activeID]
}

// ActiveID returns the id of the active model.
func (r *Repository) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Get returns the model with the given id.
func (r *Repository) Get(id string) (*track.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[id]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

// Models returns summaries of all registered circuits sorted by id.
func (r *Repository) Models() []Summary {
	r.mu.RLock()
	models := lo.Values(r.models)
	activeID := r.activeID
	r.mu.RUnlock()

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return lo.Map(models, func(m *track.Model, _ int) Summary {
		return Summary{
			ID:   m.ID,
			Name: m.Name,
			Metrics: SummaryMetrics{
				LengthM: m.Metrics.LengthM,
				Corners: m.Metrics.CornerCount,
			},
			IsActive: m.ID == activeID,
		}
	})
}

// OnChange registers a listener that is called after every mutation. The
// returned function removes the listener. Callbacks run outside the
// repository lock, so re-entrant calls are allowed.
func (r *Repository) OnChange(fn func(ChangeEvent)) func() {
	r.mu.Lock()
	r.nextToken++
	token := r.nextToken
	r.listeners = append(r.listeners, listener{token: token, fn: fn})
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i := range r.listeners {
			if r.listeners[i].token == token {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

func (r *Repository) notify(evt ChangeEvent) {
	r.mu.RLock()
	current := make([]listener, len(r.listeners))
	copy(current, r.listeners)
	r.mu.RUnlock()
	for _, l := range current {
		l.fn(evt)
	}
}
