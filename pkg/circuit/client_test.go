package circuit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fevtel/evdash-service-go/pkg/track"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	repo := NewRepository()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/circuit/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, ListResponse{Circuits: repo.Models(), Active: repo.ActiveID()})
	})
	mux.HandleFunc("GET /api/circuit/active", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, ResultFromModel(repo.Active()))
	})
	mux.HandleFunc("POST /api/circuit/activate/{id}", func(w http.ResponseWriter, r *http.Request) {
		m, err := repo.Activate(r.PathValue("id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(t, w, ResultFromModel(m))
	})
	mux.HandleFunc("POST /api/circuit/analyze", func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := BuildResult(req.ID, req.Name, req.Points)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(t, w, result)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClientList(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL)

	resp, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Circuits, 2)
	assert.Equal(t, DefaultModelID, resp.Active)
}

func TestClientActiveAndActivate(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	active, err := client.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultModelID, active.ID)

	activated, err := client.Activate(ctx, "fsae_thailand")
	require.NoError(t, err)
	assert.Equal(t, "fsae_thailand", activated.ID)

	active, err = client.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fsae_thailand", active.ID)
}

func TestClientActivateUnknown(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL)

	_, err := client.Activate(context.Background(), "unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClientAnalyzePoints(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL)

	result, err := client.AnalyzePoints(context.Background(), AnalyzeRequest{
		ID:   "custom",
		Name: "Custom",
		Points: []track.Point{
			{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0},
			{X: 200, Y: 100}, {X: 100, Y: 100}, {X: 0, Y: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", result.ID)
	assert.Len(t, result.TrackPoints, 50)
}

func TestClientBaseURLTrimmed(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL + "/")

	_, err := client.List(context.Background())
	assert.NoError(t, err)
}
