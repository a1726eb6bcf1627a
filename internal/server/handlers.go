package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklake/internal/etl"
	"github.com/desertthunder/tracklake/internal/repositories"
	"github.com/desertthunder/tracklake/internal/shared"
)

// PipelineHandler exposes the pipeline trigger and the read-back endpoints
// consumed by the dashboard layer.
type PipelineHandler struct {
	engine    *etl.Engine
	tracks    *repositories.TrackRepository
	playlists *repositories.PlaylistRepository
	runs      *repositories.RunRepository
	logger    *log.Logger
}

// NewPipelineHandler creates a PipelineHandler with its dependencies.
func NewPipelineHandler(engine *etl.Engine, tracks *repositories.TrackRepository, playlists *repositories.PlaylistRepository, runs *repositories.RunRepository, logger *log.Logger) *PipelineHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PipelineHandler{
		engine:    engine,
		tracks:    tracks,
		playlists: playlists,
		runs:      runs,
		logger:    logger,
	}
}

// Register attaches all pipeline routes to the router.
func (h *PipelineHandler) Register(r *Router) {
	r.Handle(http.MethodPost, "/api/pipelines", http.HandlerFunc(h.TriggerPipeline))
	r.Handle(http.MethodGet, "/api/playlists", http.HandlerFunc(h.ListPlaylists))
	r.Handle(http.MethodGet, "/api/playlists/", http.HandlerFunc(h.PlaylistTracks))
	r.Handle(http.MethodGet, "/api/runs", http.HandlerFunc(h.ListRuns))
}

type triggerRequest struct {
	PlaylistID string `json:"playlist_id"`
}

// TriggerPipeline runs the pipeline synchronously for the playlist in the
// request body and reports the summary or a stage-tagged failure.
func (h *PipelineHandler) TriggerPipeline(w http.ResponseWriter, req *http.Request) {
	var body triggerRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.PlaylistID) == "" {
		writeError(w, http.StatusBadRequest, "playlist_id is required")
		return
	}

	summary, err := h.engine.Run(req.Context(), body.PlaylistID, nil)
	if err != nil {
		h.logger.Error("pipeline run failed", "playlist", body.PlaylistID, "err", err)

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, shared.ErrPlaylistNotFound):
			status = http.StatusNotFound
		case errors.Is(err, shared.ErrAuthFailed), errors.Is(err, shared.ErrMissingCredentials):
			status = http.StatusBadGateway
		case errors.Is(err, shared.ErrInvalidInput):
			status = http.StatusBadRequest
		}

		payload := map[string]string{"error": err.Error()}
		var pipeErr *etl.PipelineError
		if errors.As(err, &pipeErr) {
			payload["stage"] = pipeErr.Stage.String()
		}
		writeJSON(w, status, payload)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ListPlaylists returns every ingested playlist, most recent first.
func (h *PipelineHandler) ListPlaylists(w http.ResponseWriter, req *http.Request) {
	playlists, err := h.playlists.List()
	if err != nil {
		h.logger.Error("failed to list playlists", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list playlists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// PlaylistTracks returns the persisted canonical tracks for one playlist.
//
// Routed as /api/playlists/{id}/tracks.
func (h *PipelineHandler) PlaylistTracks(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, "/api/playlists/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "tracks" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	playlistID := parts[0]

	playlist, err := h.playlists.Get(playlistID)
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		h.logger.Error("failed to get playlist", "playlist", playlistID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to get playlist")
		return
	}

	tracks, err := h.tracks.ListByPlaylist(playlistID)
	if err != nil {
		h.logger.Error("failed to list tracks", "playlist", playlistID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": playlist,
		"tracks":   tracks,
	})
}

// ListRuns returns recent pipeline run history.
func (h *PipelineHandler) ListRuns(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if v := req.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.runs.List(limit)
	if err != nil {
		h.logger.Error("failed to list runs", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
