package channel

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry shares one supervisor per channel name. Panels subscribing to
// the same name end up on the same instance, so the per-channel fallback
// decision is made once regardless of how many panels observe it.
type Registry[T any] struct {
	mu          sync.Mutex
	supervisors map[string]*Supervisor[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{supervisors: make(map[string]*Supervisor[T])}
}

// GetOrCreate returns the supervisor registered under name, calling
// create exactly once when it does not exist yet.
//
//nolint:whitespace // can't make both editor and linter happy
func (r *Registry[T]) GetOrCreate(name string, create func() (*Supervisor[T], error)) (
	*Supervisor[T], error,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.supervisors[name]; ok {
		return s, nil
	}
	s, err := create()
	if err != nil {
		return nil, err
	}
	r.supervisors[name] = s
	return s, nil
}

func (r *Registry[T]) Get(name string) (*Supervisor[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.supervisors[name]
	return s, ok
}

func (r *Registry[T]) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.supervisors, name)
}

// Names returns the registered channel names sorted alphabetically.
func (r *Registry[T]) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := lo.Keys(r.supervisors)
	sort.Strings(names)
	return names
}

// Statuses returns a snapshot per registered channel, sorted by name.
func (r *Registry[T]) Statuses() []Status {
	r.mu.Lock()
	supervisors := lo.Values(r.supervisors)
	r.mu.Unlock()

	sort.Slice(supervisors, func(i, j int) bool {
		return supervisors[i].Name() < supervisors[j].Name()
	})
	return lo.Map(supervisors, func(s *Supervisor[T], _ int) Status {
		return s.Status()
	})
}
