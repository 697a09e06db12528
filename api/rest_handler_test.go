package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/leakdetect/journal"
	"github.com/guileen/leakdetect/leak"
)

type apiResource struct {
	payload [16]byte
}

func setupTestRESTHandler(t *testing.T, withJournal bool) (*chi.Mux, *journal.Journal) {
	t.Helper()

	var j *journal.Journal
	if withJournal {
		var err error
		j, err = journal.Open(filepath.Join(t.TempDir(), "journal"))
		require.NoError(t, err)
		t.Cleanup(func() { j.Close() })
	}

	r := chi.NewRouter()
	NewRESTHandler(j).RegisterRoutes(r)
	return r, j
}

func restoreLevel(t *testing.T) {
	t.Helper()
	old := leak.GetLevel()
	t.Cleanup(func() { _ = leak.SetLevel(old) })
}

func TestGetLevel(t *testing.T) {
	restoreLevel(t)
	require.NoError(t, leak.SetLevel(leak.LevelAdvanced))
	router, _ := setupTestRESTHandler(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/level", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp LevelResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ADVANCED", resp.Level)
	assert.True(t, resp.Enabled)
}

func TestSetLevel(t *testing.T) {
	restoreLevel(t)
	router, _ := setupTestRESTHandler(t, false)

	body, _ := json.Marshal(SetLevelRequest{Level: "paranoid"})
	req := httptest.NewRequest(http.MethodPut, "/api/level", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, leak.LevelParanoid, leak.GetLevel())

	var resp LevelResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "PARANOID", resp.Level)
}

func TestSetLevelByOrdinal(t *testing.T) {
	restoreLevel(t)
	router, _ := setupTestRESTHandler(t, false)

	body, _ := json.Marshal(SetLevelRequest{Level: "0"})
	req := httptest.NewRequest(http.MethodPut, "/api/level", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, leak.LevelDisabled, leak.GetLevel())
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	restoreLevel(t)
	before := leak.GetLevel()
	router, _ := setupTestRESTHandler(t, false)

	body, _ := json.Marshal(SetLevelRequest{Level: "extreme"})
	req := httptest.NewRequest(http.MethodPut, "/api/level", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, before, leak.GetLevel(), "a rejected request must not change the level")

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "extreme")
}

func TestSetLevelRejectsBadBody(t *testing.T) {
	restoreLevel(t)
	router, _ := setupTestRESTHandler(t, false)

	req := httptest.NewRequest(http.MethodPut, "/api/level", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDetectors(t *testing.T) {
	d, err := leak.NewDetectorWithInterval[apiResource]("api.Resource", 7)
	require.NoError(t, err)
	t.Cleanup(d.Unregister)

	router, _ := setupTestRESTHandler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/detectors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []DetectorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	found := false
	for _, dr := range resp {
		if dr.ResourceType == "api.Resource" {
			found = true
			assert.Equal(t, 7, dr.SamplingInterval)
			assert.Equal(t, 0, dr.Active)
		}
	}
	assert.True(t, found, "registered detector missing from response")
}

func TestListReportsWithoutJournal(t *testing.T) {
	router, _ := setupTestRESTHandler(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReports(t *testing.T) {
	router, j := setupTestRESTHandler(t, true)

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, j.Append(leak.Report{
			ID:           uuid.New(),
			ResourceType: "api.Resource",
			Time:         base.Add(time.Duration(i) * time.Second),
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ReportsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Reports, 2)
	assert.Equal(t, "api.Resource", resp.Reports[0].ResourceType)
	assert.True(t, resp.Reports[0].Time.After(resp.Reports[1].Time), "newest first")
}
