package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cbodonnell/blockfall/pkg/game/constants"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"github.com/cbodonnell/blockfall/pkg/repositories"
	"github.com/cbodonnell/blockfall/pkg/version"
	"github.com/gorilla/mux"
)

// MaxScoresLimit caps the limit parameter of the scores endpoint
const MaxScoresLimit = 100

// HighScoreResponse is returned by the high score endpoint
type HighScoreResponse struct {
	HighScore uint32 `json:"highScore"`
}

// SnapshotResponse describes a save slot without its board
type SnapshotResponse struct {
	Slot        string `json:"slot"`
	UpdatedAt   int64  `json:"updatedAt"`
	Timestamp   int64  `json:"timestamp"`
	Score       uint32 `json:"score"`
	RowsCleared uint32 `json:"rowsCleared"`
	GameOver    bool   `json:"gameOver"`
}

// VersionResponse is returned by the version endpoint
type VersionResponse struct {
	Version string `json:"version"`
}

func HandleListScores(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := constants.TopScoreCount
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > MaxScoresLimit {
				http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
				return
			}
			limit = n
		}

		scores, err := repository.TopScores(r.Context(), limit)
		if err != nil {
			log.Error("failed to list scores: %v", err)
			http.Error(w, "Failed to list scores", http.StatusInternalServerError)
			return
		}

		writeJSON(w, scores)
	}
}

func HandleHighScore(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		high, err := repository.HighScore(r.Context())
		if err != nil {
			log.Error("failed to get high score: %v", err)
			http.Error(w, "Failed to get high score", http.StatusInternalServerError)
			return
		}

		writeJSON(w, HighScoreResponse{HighScore: high})
	}
}

func HandleGetSnapshot(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot := mux.Vars(r)["slot"]
		record, err := repository.LoadSnapshot(r.Context(), slot)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Snapshot not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load snapshot: %v", err)
			http.Error(w, "Failed to load snapshot", http.StatusInternalServerError)
			return
		}

		snapshot, err := messages.DeserializeSnapshot(record.Data)
		if err != nil {
			log.Error("failed to decode snapshot in slot %s: %v", slot, err)
			http.Error(w, "Failed to decode snapshot", http.StatusInternalServerError)
			return
		}

		writeJSON(w, SnapshotResponse{
			Slot:        record.Slot,
			UpdatedAt:   record.UpdatedAt,
			Timestamp:   snapshot.Timestamp,
			Score:       snapshot.Score,
			RowsCleared: snapshot.RowsCleared,
			GameOver:    snapshot.GameOver,
		})
	}
}

func HandleDeleteSnapshot(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot := mux.Vars(r)["slot"]
		if err := repository.DeleteSnapshot(r.Context(), slot); err != nil {
			log.Error("failed to delete snapshot: %v", err)
			http.Error(w, "Failed to delete snapshot", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, VersionResponse{Version: version.Get()})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
