package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/victoria/internal/model"
	"github.com/fortuna/victoria/internal/pipeline"
)

// Handler serves the artifact files for the configured groups.
type Handler struct {
	dataDir string
	groups  []model.Group
}

// NewHandler creates a new handler.
func NewHandler(dataDir string, groups []model.Group) *Handler {
	return &Handler{dataDir: dataDir, groups: groups}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "victoria",
	})
}

// GetGroups lists the configured competition groups.
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.groups)
}

// GetMatches returns a group's enriched match list.
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, pipeline.EnrichedFile)
}

// GetLeaderboard returns a group's rating leaderboard.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, pipeline.LeaderboardFile)
}

// GetStandings returns a group's standings table.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, pipeline.StandingsFile)
}

// serveArtifact maps the {group} path variable to a configured group and
// streams the corresponding artifact file.
func (h *Handler) serveArtifact(w http.ResponseWriter, r *http.Request, fileFor func(string) string) {
	label, ok := h.resolveGroup(mux.Vars(r)["group"])
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown group", nil)
		return
	}

	path := filepath.Join(h.dataDir, fileFor(label))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "Artifact not produced yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to read artifact", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// resolveGroup accepts either the exact label or its safe form
// ("Grupo 6" or "Grupo6").
func (h *Handler) resolveGroup(raw string) (string, bool) {
	for _, g := range h.groups {
		if strings.EqualFold(raw, g.Label) || strings.EqualFold(raw, model.SafeLabel(g.Label)) {
			return g.Label, true
		}
	}
	return "", false
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("[api] %s: %v", message, err)
	}
	respondJSON(w, status, map[string]string{"error": message})
}
