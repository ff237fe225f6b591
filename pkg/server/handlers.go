package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/match"
	"github.com/decker502/tdcore/pkg/types"
)

// LoadRequest 加载关卡
type LoadRequest struct {
	LevelID string `json:"levelId"`
	Star    int    `json:"star,omitempty"`
}

// ActionRequest 玩家操作参数，按操作类型取用其中的字段
type ActionRequest struct {
	Plant   *types.PlantType   `json:"plant,omitempty"`
	Element *types.ElementType `json:"element,omitempty"`
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	TowerID uint64             `json:"towerId,omitempty"`
}

// ActionResponse 操作结果
type ActionResponse struct {
	Accepted bool               `json:"accepted"`
	Reason   match.RejectReason `json:"reason"`
	Running  *bool              `json:"running,omitempty"`
	HUD      match.HUD          `json:"hud"`
}

// LevelLoader 按 ID 读取关卡
type LevelLoader func(id string) (*config.LevelConfig, error)

type handlers struct {
	driver *Driver
	levels LevelLoader
	server *Server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *handlers) handleListLevels(w http.ResponseWriter, r *http.Request) {
	ids, err := config.ListLevelIDs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"levels": ids})
}

func (h *handlers) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if req.LevelID == "" {
		writeError(w, http.StatusBadRequest, errors.New("levelId is required"))
		return
	}
	if req.Star < 0 || req.Star > 3 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("star must be between 1 and 3, got %d", req.Star))
		return
	}
	level, err := h.levels(req.LevelID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if req.Star > 0 {
		level.Options.Star = req.Star
	}

	var loadErr error
	var hud match.HUD
	if err := h.driver.Do(r.Context(), func(m *match.Match) {
		loadErr = m.LoadLevel(match.LevelInput{Level: level})
		hud = m.HUD()
	}); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if loadErr != nil {
		writeError(w, http.StatusUnprocessableEntity, loadErr)
		return
	}
	writeJSON(w, http.StatusOK, hud)
}

func (h *handlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.driver.Latest())
}

func (h *handlers) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	var req ActionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
			return
		}
	}

	var run func(m *match.Match) (bool, *bool)
	at := types.Position{X: req.X, Y: req.Y}
	switch name {
	case "place":
		if req.Plant == nil {
			writeError(w, http.StatusBadRequest, errors.New("plant is required"))
			return
		}
		run = func(m *match.Match) (bool, *bool) { return m.PlaceTower(*req.Plant, at), nil }
	case "element":
		if req.Element == nil {
			writeError(w, http.StatusBadRequest, errors.New("element is required"))
			return
		}
		run = func(m *match.Match) (bool, *bool) { return m.ApplyElement(*req.Element, at), nil }
	case "fire":
		run = func(m *match.Match) (bool, *bool) { return m.ManualFire(ecs.EntityID(req.TowerID)), nil }
	case "start":
		run = func(m *match.Match) (bool, *bool) { return m.StartWave(), nil }
	case "pause":
		run = func(m *match.Match) (bool, *bool) {
			running := m.TogglePause()
			return m.LastRejection() == match.RejectNone, &running
		}
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown action %q", name))
		return
	}

	var resp ActionResponse
	if err := h.driver.Do(r.Context(), func(m *match.Match) {
		resp.Accepted, resp.Running = run(m)
		resp.Reason = m.LastRejection()
		resp.HUD = m.HUD()
	}); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	recordAction(name, resp.Accepted)
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleProgress(w http.ResponseWriter, r *http.Request) {
	if h.server.progress == nil {
		writeError(w, http.StatusNotFound, errors.New("progress is not configured"))
		return
	}
	record, err := h.server.progress.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
