//nolint:funlen // ok for tests
package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fevtel/evdash-service-go/pkg/track"
)

func sampleModel(id string) *track.Model {
	return &track.Model{
		ID:   id,
		Name: "Sample " + id,
		Waypoints: []track.Waypoint{
			{X: 0, Y: 0, Sector: 1},
			{X: 10, Y: 0, Sector: 2},
			{X: 10, Y: 10, Sector: 3},
		},
		Metrics: track.Metrics{LengthM: 100, CornerCount: 2},
	}
}

func TestRepositoryDefaults(t *testing.T) {
	r := NewRepository()

	assert.Equal(t, DefaultModelID, r.ActiveID())
	assert.NotNil(t, r.Active())
	assert.Equal(t, DefaultModelID, r.Active().ID)

	models := r.Models()
	assert.Len(t, models, 2)
	// sorted by id
	assert.Equal(t, "fsae_thailand", models[0].ID)
	assert.Equal(t, "silverstone", models[1].ID)
	assert.False(t, models[0].IsActive)
	assert.True(t, models[1].IsActive)
}

func TestRepositoryRegisterAndActivate(t *testing.T) {
	r := NewRepository()
	m := sampleModel("monaco")

	assert.NoError(t, r.Register(m))
	got, err := r.Get("monaco")
	assert.NoError(t, err)
	assert.Same(t, m, got)
	// registering does not change the active selection
	assert.Equal(t, DefaultModelID, r.ActiveID())

	activated, err := r.Activate("monaco")
	assert.NoError(t, err)
	assert.Same(t, m, activated)
	assert.Equal(t, "monaco", r.ActiveID())
	assert.Same(t, m, r.Active())
}

func TestRepositoryRegisterReplaces(t *testing.T) {
	r := NewRepository()
	first := sampleModel("monza")
	second := sampleModel("monza")
	second.Name = "Monza v2"

	assert.NoError(t, r.Register(first))
	assert.NoError(t, r.Register(second))

	got, err := r.Get("monza")
	assert.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, "Monza v2", got.Name)
}

func TestRepositoryRegisterInvalid(t *testing.T) {
	r := NewRepository()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&track.Model{Name: "no id"}))
}

func TestRepositoryActivateUnknown(t *testing.T) {
	r := NewRepository()

	m, err := r.Activate("unknown")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrNotFound)
	// active selection is untouched on failure
	assert.Equal(t, DefaultModelID, r.ActiveID())

	_, err = r.Get("unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryOnChange(t *testing.T) {
	r := NewRepository()
	var events []ChangeEvent
	unregister := r.OnChange(func(evt ChangeEvent) {
		events = append(events, evt)
	})

	m := sampleModel("spa")
	assert.NoError(t, r.Register(m))
	_, err := r.Activate("spa")
	assert.NoError(t, err)

	assert.Len(t, events, 2)
	assert.Equal(t, ModelRegistered, events[0].Type)
	assert.Same(t, m, events[0].Model)
	assert.Equal(t, ModelActivated, events[1].Type)
	assert.Same(t, m, events[1].Model)

	unregister()
	assert.NoError(t, r.Register(sampleModel("suzuka")))
	assert.Len(t, events, 2)
}

func TestRepositoryOnChangeReentrant(t *testing.T) {
	r := NewRepository()
	var sawActive string
	r.OnChange(func(evt ChangeEvent) {
		// listener may call back into the repository
		sawActive = r.ActiveID()
	})

	_, err := r.Activate("fsae_thailand")
	assert.NoError(t, err)
	assert.Equal(t, "fsae_thailand", sawActive)
}

func TestRepositoryWithModels(t *testing.T) {
	extra := sampleModel("imola")
	r := NewRepository(WithModels(extra))

	assert.Len(t, r.Models(), 3)
	got, err := r.Get("imola")
	assert.NoError(t, err)
	assert.Same(t, extra, got)
	// the built-in default stays active
	assert.Equal(t, DefaultModelID, r.ActiveID())
}
