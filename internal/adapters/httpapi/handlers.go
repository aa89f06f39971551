package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/example/questline/internal/apperr"
	"github.com/example/questline/internal/ctxutil"
	"github.com/example/questline/internal/ports/primary"
)

const maxBodyBytes = 1 << 20

type generateRequest struct {
	Domain string `json:"domain"`
}

type nodeRequest struct {
	NodeID string `json:"node_id"`
}

type nodePayload struct {
	ID          string `json:"id"`
	Roadmap     string `json:"roadmap"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Order       int    `json:"order"`
	XPReward    int    `json:"xp_reward"`
	CoinReward  int    `json:"coin_reward"`
}

type roadmapPayload struct {
	ID          string        `json:"id"`
	User        string        `json:"user"`
	Domain      string        `json:"domain"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   string        `json:"created_at"`
	CompletedAt string        `json:"completed_at,omitempty"`
	Nodes       []nodePayload `json:"nodes"`
}

type profilePayload struct {
	User          string `json:"user"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"current_streak"`
	Language      string `json:"language"`
	CoinBalance   int    `json:"coin_balance"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	rm, err := s.roadmaps.GenerateRoadmap(r.Context(), primary.GenerateRoadmapRequest{
		UserID: ctxutil.UserFromContext(r.Context()),
		Domain: req.Domain,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoadmapPayload(rm))
}

func (s *Server) handleStartNode(w http.ResponseWriter, r *http.Request) {
	s.handleNodeAction(w, r, s.roadmaps.StartNode)
}

func (s *Server) handleCompleteNode(w http.ResponseWriter, r *http.Request) {
	s.handleNodeAction(w, r, s.roadmaps.CompleteNode)
}

func (s *Server) handleNodeAction(w http.ResponseWriter, r *http.Request, action func(context.Context, primary.NodeActionRequest) (*primary.RoadmapNode, error)) {
	var req nodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	nodeID := strings.TrimSpace(req.NodeID)
	if nodeID == "" {
		writeError(w, r, s.logger, apperr.Validation("node_id is required"))
		return
	}
	if _, err := uuid.Parse(nodeID); err != nil {
		writeError(w, r, s.logger, apperr.Validation("invalid node id"))
		return
	}

	node, err := action(r.Context(), primary.NodeActionRequest{
		UserID: ctxutil.UserFromContext(r.Context()),
		NodeID: nodeID,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toNodePayload(node))
}

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	filters := primary.RoadmapFilters{
		UserID: ctxutil.UserFromContext(r.Context()),
		Domain: r.URL.Query().Get("domain"),
	}
	if raw := r.URL.Query().Get("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, s.logger, apperr.Validation("all must be a boolean"))
			return
		}
		filters.IncludeInactive = all
	}

	roadmaps, err := s.roadmaps.ListRoadmaps(r.Context(), filters)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	payload := make([]roadmapPayload, len(roadmaps))
	for i, rm := range roadmaps {
		payload[i] = toRoadmapPayload(rm)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, s.logger, apperr.NotFound("roadmap not found"))
		return
	}

	rm, err := s.roadmaps.GetRoadmap(r.Context(), ctxutil.UserFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoadmapPayload(rm))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.GetProfile(r.Context(), ctxutil.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profilePayload{
		User:          p.UserID,
		XP:            p.XP,
		Level:         p.Level,
		CurrentStreak: p.CurrentStreak,
		Language:      p.Language,
		CoinBalance:   p.CoinBalance,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

func toRoadmapPayload(rm *primary.Roadmap) roadmapPayload {
	nodes := make([]nodePayload, len(rm.Nodes))
	for i, n := range rm.Nodes {
		nodes[i] = toNodePayload(n)
	}
	return roadmapPayload{
		ID:          rm.ID,
		User:        rm.UserID,
		Domain:      rm.Domain,
		IsActive:    rm.IsActive,
		CreatedAt:   rm.CreatedAt,
		CompletedAt: rm.CompletedAt,
		Nodes:       nodes,
	}
}

func toNodePayload(n *primary.RoadmapNode) nodePayload {
	return nodePayload{
		ID:          n.ID,
		Roadmap:     n.RoadmapID,
		Title:       n.Title,
		Description: n.Description,
		Status:      n.Status,
		Order:       n.Order,
		XPReward:    n.XPReward,
		CoinReward:  n.CoinReward,
	}
}
