package circuit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCircuitJSON = `{
  "id": "hockenheim",
  "name": "Hockenheimring",
  "svgPath": "M 0.0 0.0 L 10.0 0.0 L 10.0 10.0 Z",
  "trackPoints": [
    {"x": 0, "y": 0, "sector": 1},
    {"x": 10, "y": 0, "sector": 2},
    {"x": 10, "y": 10, "sector": 3}
  ],
  "sectors": [],
  "metrics": {"lengthM": 4574, "cornerCount": 17},
  "viewbox": "0 0 20 20"
}`

const validCircuitYAML = `id: zandvoort
name: Zandvoort
trackPoints:
  - {x: 0, y: 0, sector: 1}
  - {x: 5, y: 5, sector: 2}
viewbox: 0 0 10 10
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hockenheim.json", validCircuitJSON)
	writeFile(t, dir, "zandvoort.yaml", validCircuitYAML)
	writeFile(t, dir, "broken.json", `{"id": `)
	writeFile(t, dir, "no-points.json", `{"id": "empty", "trackPoints": []}`)
	writeFile(t, dir, "notes.txt", "not a circuit")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	repo := NewRepository()
	loader := NewLoader(repo, dir)

	loaded, err := loader.LoadAll()
	assert.NoError(t, err)
	assert.Equal(t, 2, loaded)

	m, err := repo.Get("hockenheim")
	assert.NoError(t, err)
	assert.Equal(t, "Hockenheimring", m.Name)
	assert.Len(t, m.Waypoints, 3)
	assert.Equal(t, 4574.0, m.Metrics.LengthM)

	m, err = repo.Get("zandvoort")
	assert.NoError(t, err)
	assert.Equal(t, "Zandvoort", m.Name)
	assert.Len(t, m.Waypoints, 2)

	// broken and invalid files are skipped, defaults stay intact
	assert.Len(t, repo.Models(), 4)
	assert.Equal(t, DefaultModelID, repo.ActiveID())
}

func TestLoaderSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hockenheim.json", validCircuitJSON)
	path := filepath.Join(dir, "hockenheim.json")

	repo := NewRepository()
	loader := NewLoader(repo, dir)
	require.NoError(t, loader.loadFile(path))

	// a manual override survives a duplicate write event with the same bytes
	m, err := repo.Get("hockenheim")
	require.NoError(t, err)
	override := *m
	override.Name = "Hockenheim GP"
	require.NoError(t, repo.Register(&override))
	require.NoError(t, loader.loadFile(path))
	m, err = repo.Get("hockenheim")
	require.NoError(t, err)
	assert.Equal(t, "Hockenheim GP", m.Name)

	// changed bytes are picked up again
	writeFile(t, dir, "hockenheim.json",
		strings.Replace(validCircuitJSON, "Hockenheimring", "Hockenheimring Baden", 1))
	require.NoError(t, loader.loadFile(path))
	m, err = repo.Get("hockenheim")
	require.NoError(t, err)
	assert.Equal(t, "Hockenheimring Baden", m.Name)
}

func TestLoaderLoadAllMissingDir(t *testing.T) {
	repo := NewRepository()
	loader := NewLoader(repo, filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := loader.LoadAll()
	assert.Error(t, err)
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository()
	loader := NewLoader(repo, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchDone := make(chan error, 1)
	go func() { watchDone <- loader.Watch(ctx) }()

	// give the watcher time to install before writing
	time.Sleep(50 * time.Millisecond)
	writeFile(t, dir, "hockenheim.json", validCircuitJSON)

	assert.Eventually(t, func() bool {
		_, err := repo.Get("hockenheim")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-watchDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop on context cancel")
	}
}
