package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/usecase"
)

type selectRequest struct {
	Section     string    `json:"section"`
	Category    string    `json:"category"`
	QueryText   string    `json:"query_text,omitempty"`
	QueryVector []float32 `json:"query_vector,omitempty"`
}

type selectResponse struct {
	ComponentID string  `json:"component_id"`
	Similarity  float64 `json:"similarity"`
	Novelty     float64 `json:"novelty"`
	FinalScore  float64 `json:"final_score"`
	Mode        string  `json:"mode"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}

	selection, err := s.uc.Selection.SelectComponent(r.Context(), usecase.SelectInput{
		Section:     types.SectionType(req.Section),
		Category:    types.CategoryID(req.Category),
		QueryText:   req.QueryText,
		QueryVector: req.QueryVector,
	})
	if err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}
	if selection == nil {
		// No eligible candidate is an expected outcome, not an error
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(r, w, http.StatusOK, selectResponse{
		ComponentID: string(selection.Component.ID),
		Similarity:  selection.Score.Similarity,
		Novelty:     selection.Score.Novelty,
		FinalScore:  selection.Score.FinalScore(),
		Mode:        selection.Mode.String(),
	})
}

type layoutPayload map[string]string

func toLayout(p layoutPayload) model.Layout {
	layout := make(model.Layout, len(p))
	for section, componentID := range p {
		layout[types.SectionType(section)] = types.ComponentID(componentID)
	}
	return layout
}

func fromLayout(l model.Layout) layoutPayload {
	p := make(layoutPayload, len(l))
	for section, componentID := range l {
		p[string(section)] = string(componentID)
	}
	return p
}

type finalizeRequest struct {
	Category string        `json:"category"`
	Layout   layoutPayload `json:"layout"`
}

type finalizeResponse struct {
	Layout      layoutPayload `json:"layout"`
	Hash        string        `json:"hash"`
	Substituted []string      `json:"substituted,omitempty"`
}

func (s *Server) handleFinalizeLayout(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.uc.Layout.FinalizeLayout(r.Context(), types.CategoryID(req.Category), toLayout(req.Layout))
	if err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}

	resp := finalizeResponse{
		Layout: fromLayout(result.Layout),
		Hash:   string(result.Hash),
	}
	for _, section := range result.Substituted {
		resp.Substituted = append(resp.Substituted, string(section))
	}

	writeJSON(r, w, http.StatusOK, resp)
}

type recordRequest struct {
	GenerationID string        `json:"generation_id"`
	Category     string        `json:"category"`
	StyleTag     string        `json:"style_tag,omitempty"`
	Layout       layoutPayload `json:"layout"`
}

func (s *Server) handleRecordGeneration(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}

	generationID := types.GenerationID(req.GenerationID)
	if generationID == "" {
		generationID = types.NewGenerationID()
	}

	layout := toLayout(req.Layout)
	if len(layout) == 0 {
		handleError(w, r, goerr.New("layout is empty"), http.StatusBadRequest)
		return
	}

	// Components enter cooldown once the generation is finalized; the
	// ledger write itself is fire-and-forget.
	s.uc.Cooldown.MarkLayoutUsed(r.Context(), layout)
	s.uc.Tracker.RecordGenerationAsync(r.Context(),
		generationID,
		types.CategoryID(req.Category),
		types.StyleTag(req.StyleTag),
		layout,
	)

	writeJSON(r, w, http.StatusAccepted, map[string]string{
		"generation_id": string(generationID),
	})
}

type buildRequest struct {
	Category string `json:"category"`
	StyleTag string `json:"style_tag,omitempty"`
	Sections []struct {
		Section   string `json:"section"`
		QueryText string `json:"query_text,omitempty"`
	} `json:"sections"`
}

type buildResponse struct {
	GenerationID string        `json:"generation_id"`
	Layout       layoutPayload `json:"layout"`
	Hash         string        `json:"hash"`
	Substituted  []string      `json:"substituted,omitempty"`
	Skipped      []string      `json:"skipped,omitempty"`
}

func (s *Server) handleBuildLayout(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}

	requests := make([]usecase.SectionRequest, 0, len(req.Sections))
	for _, section := range req.Sections {
		requests = append(requests, usecase.SectionRequest{
			Section:   types.SectionType(section.Section),
			QueryText: section.QueryText,
		})
	}

	result, err := s.uc.BuildLayout(r.Context(), types.CategoryID(req.Category), types.StyleTag(req.StyleTag), requests)
	if err != nil {
		handleError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := buildResponse{
		GenerationID: string(result.GenerationID),
		Layout:       fromLayout(result.Layout),
		Hash:         string(result.Hash),
	}
	for _, section := range result.Substituted {
		resp.Substituted = append(resp.Substituted, string(section))
	}
	for _, section := range result.Skipped {
		resp.Skipped = append(resp.Skipped, string(section))
	}

	writeJSON(r, w, http.StatusOK, resp)
}

type effectsRequest struct {
	Pools   map[string][]string `json:"pools,omitempty"`
	Recent  map[string][]string `json:"recent,omitempty"`
	Current map[string]string   `json:"current,omitempty"`
}

func (s *Server) handleDiversifyEffects(w http.ResponseWriter, r *http.Request) {
	var req effectsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}

	var pools model.EffectPools
	if req.Pools != nil {
		pools = make(model.EffectPools, len(req.Pools))
		for attribute, pool := range req.Pools {
			pools[model.EffectAttribute(attribute)] = pool
		}
	}

	recent := make(usecase.EffectHistory, len(req.Recent))
	for attribute, values := range req.Recent {
		recent[model.EffectAttribute(attribute)] = values
	}

	current := make(usecase.EffectAssignment, len(req.Current))
	for attribute, value := range req.Current {
		current[model.EffectAttribute(attribute)] = value
	}

	assignment := s.uc.Effects.DiversifyEffects(r.Context(), pools, recent, current)

	resp := make(map[string]string, len(assignment))
	for attribute, value := range assignment {
		resp[string(attribute)] = value
	}

	writeJSON(r, w, http.StatusOK, resp)
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	componentID := types.ComponentID(chi.URLParam(r, "componentID"))
	category := types.CategoryID(r.URL.Query().Get("category"))

	if err := componentID.Validate(); err != nil {
		handleError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := category.Validate(); err != nil {
		handleError(w, r, goerr.Wrap(err, "category query parameter is required"), http.StatusBadRequest)
		return
	}

	score := s.uc.Tracker.PriorityScore(r.Context(), componentID, category, 0)

	writeJSON(r, w, http.StatusOK, map[string]any{
		"component_id": string(componentID),
		"category":     string(category),
		"priority":     score,
	})
}
