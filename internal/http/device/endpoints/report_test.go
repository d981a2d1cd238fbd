package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/identity"
)

func newDeviceRouter(t *testing.T) (*gin.Engine, *db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.New(filepath.Join(t.TempDir(), "hydra.db"))
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	r := gin.New()
	RegisterDeviceRoutes(r.Group("/api/device"), store, identity.NewResolver(store))
	return r, store
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReportRegistersDevice(t *testing.T) {
	r, store := newDeviceRouter(t)

	w := postJSON(r, "/api/device/report", map[string]any{
		"name":            "lobby",
		"hardware_id":     "hw-1",
		"status":          map[string]any{"uptime": 42},
		"reported_config": map[string]any{"volume": 80},
	})
	require.Equal(t, http.StatusOK, w.Code)

	d, err := store.GetDeviceByName("lobby")
	require.NoError(t, err)
	require.NotNil(t, d.HardwareID)
	assert.Equal(t, "hw-1", *d.HardwareID)
	assert.NotNil(t, d.LastSeen)
	require.NotNil(t, d.ReportedConfig)
	assert.JSONEq(t, `{"volume":80}`, *d.ReportedConfig)
	// the address falls back to the connection's client IP
	assert.NotNil(t, d.LastAddress)
}

func TestReportRejectsMalformedBody(t *testing.T) {
	r, _ := newDeviceRouter(t)

	body := []byte(`{"name":"lobby","status":{broken}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/device/report", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportRequiresName(t *testing.T) {
	r, _ := newDeviceRouter(t)
	w := postJSON(r, "/api/device/report", map[string]any{"hardware_id": "hw-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportNameConflict(t *testing.T) {
	r, _ := newDeviceRouter(t)

	w := postJSON(r, "/api/device/report", map[string]any{"name": "lobby", "hardware_id": "hw-1"})
	require.Equal(t, http.StatusOK, w.Code)

	// a second physical device claiming the same name is refused
	w = postJSON(r, "/api/device/report", map[string]any{"name": "lobby", "hardware_id": "hw-2"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAppendEventSnapshotsLocation(t *testing.T) {
	r, store := newDeviceRouter(t)

	w := postJSON(r, "/api/device/report", map[string]any{"name": "lobby"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, store.UpdateDevice("lobby", nil, nil, strPtr("HQ"), nil, nil, nil, nil, nil))

	w = postJSON(r, "/api/device/events", map[string]any{
		"name":      "lobby",
		"filename":  "intro.mp4",
		"played_at": "2026-08-28T10:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)

	events, err := store.ListPlayEvents(strPtr("lobby"), nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Location)
	assert.Equal(t, "HQ", *events[0].Location)
}

func TestAppendEventUnknownDevice(t *testing.T) {
	r, _ := newDeviceRouter(t)
	w := postJSON(r, "/api/device/events", map[string]any{"name": "ghost", "filename": "a.mp4"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrentPlaylist(t *testing.T) {
	r, store := newDeviceRouter(t)

	w := postJSON(r, "/api/device/report", map[string]any{"name": "lobby"})
	require.Equal(t, http.StatusOK, w.Code)

	// unassigned device gets an empty list, not an error
	w = get(r, "/api/device/playlist?name=lobby")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []struct {
			Filename string `json:"filename"`
			Position int    `json:"position"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)

	v, err := store.CreateVideo("loop.mp4", "loop.mp4", "aa", 1, nil, nil)
	require.NoError(t, err)
	p, err := store.CreatePlaylist("default", nil)
	require.NoError(t, err)
	require.NoError(t, store.ReplacePlaylistItems(p.ID, []db.PlaylistEntry{
		{VideoID: v.ID, Position: 1},
		{VideoID: v.ID, Position: 2},
	}))
	require.NoError(t, store.AssignPlaylist("lobby", &p.ID))

	w = get(r, "/api/device/playlist?name=lobby")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "loop.mp4", resp.Items[0].Filename)
	assert.Equal(t, 1, resp.Items[0].Position)
	assert.Equal(t, 2, resp.Items[1].Position)

	w = get(r, "/api/device/playlist?name=ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrentConfig(t *testing.T) {
	r, store := newDeviceRouter(t)

	w := postJSON(r, "/api/device/report", map[string]any{"name": "lobby"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, store.SetConfigOverride("lobby", strPtr(`{"volume":55}`)))

	w = get(r, "/api/device/config?name=lobby")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Config    json.RawMessage `json:"config"`
		UpdatedAt *string         `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `{"volume":55}`, string(resp.Config))
	assert.NotNil(t, resp.UpdatedAt)
}

func strPtr(s string) *string { return &s }
