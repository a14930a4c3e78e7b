package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cbodonnell/blockfall/pkg/api/handlers"
	"github.com/cbodonnell/blockfall/pkg/game/types"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"github.com/cbodonnell/blockfall/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *repositories.MemoryRepository) {
	t.Helper()
	ctx := context.Background()
	repo := repositories.NewMemoryRepository()
	for i, score := range []uint32{100, 800, 300, 50, 600, 200} {
		require.NoError(t, repo.AddScore(ctx, types.NewScoreEntry("abc", score, score/100, int64(i))))
	}
	b, err := messages.SerializeSnapshot(&types.Snapshot{Timestamp: 77, Score: 420, RowsCleared: 4})
	require.NoError(t, err)
	require.NoError(t, repo.SaveSnapshot(ctx, "default", b))
	require.NoError(t, repo.SaveSnapshot(ctx, "broken", []byte("nope")))

	return NewRouter(NewAPIServerOptions{Repository: repo}), repo
}

func TestScores(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantScores []uint32
	}{
		{name: "default limit", target: "/scores", wantStatus: http.StatusOK, wantScores: []uint32{800, 600, 300, 200, 100}},
		{name: "explicit limit", target: "/scores?limit=2", wantStatus: http.StatusOK, wantScores: []uint32{800, 600}},
		{name: "limit past the end", target: "/scores?limit=50", wantStatus: http.StatusOK, wantScores: []uint32{800, 600, 300, 200, 100, 50}},
		{name: "zero limit", target: "/scores?limit=0", wantStatus: http.StatusBadRequest},
		{name: "limit too large", target: "/scores?limit=101", wantStatus: http.StatusBadRequest},
		{name: "not a number", target: "/scores?limit=five", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

			var entries []types.ScoreEntry
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
			var scores []uint32
			for _, e := range entries {
				scores = append(scores, e.Score)
				assert.Equal(t, "ABC", e.Label)
			}
			assert.Equal(t, tt.wantScores, scores)
		})
	}
}

func TestHighScore(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scores/high", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"highScore":800}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/scores/high", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestSnapshots(t *testing.T) {
	router, repo := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots/default", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got handlers.SnapshotResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "default", got.Slot)
	assert.Equal(t, int64(77), got.Timestamp)
	assert.Equal(t, uint32(420), got.Score)
	assert.Equal(t, uint32(4), got.RowsCleared)
	assert.False(t, got.GameOver)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/snapshots/default", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := repo.LoadSnapshot(context.Background(), "default")
	assert.True(t, repositories.IsNotFound(err))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshots/default", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVersion(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"dev"}`, rec.Body.String())
}

func TestStreamIsOptional(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
