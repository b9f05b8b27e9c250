package battle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/nbkbattle/nbk-battle/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for drafts and game sessions.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for gameplay endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "battle_http").Logger(),
	}
}

// CreateDraftRequest is the payload for POST /v1/drafts.
type CreateDraftRequest struct {
	Team1Name string `json:"team1_name"`
	Team2Name string `json:"team2_name"`
}

// PickRequest is the payload for POST /v1/drafts/{id}/picks.
type PickRequest struct {
	CategoryID string `json:"category_id"`
}

// PickResponse wraps the updated draft with the outcome of the click.
type PickResponse struct {
	Outcome PickOutcome `json:"outcome"`
	Draft   *Draft      `json:"draft"`
}

// CreateSessionRequest is the payload for POST /v1/sessions.
type CreateSessionRequest struct {
	DraftID string `json:"draft_id"`
	Mode    Mode   `json:"mode"`
}

// OpenCellRequest is the payload for POST /v1/sessions/{id}/cells/open.
type OpenCellRequest struct {
	CategoryID string `json:"category_id"`
	Tier       int    `json:"tier"`
	Slot       int    `json:"slot"`
}

// TimerRequest is the payload for POST /v1/sessions/{id}/timer.
type TimerRequest struct {
	Running bool `json:"running"`
}

// ResolveRequest is the payload for POST /v1/sessions/{id}/resolve.
type ResolveRequest struct {
	Team int `json:"team"`
}

// UsePowerUpRequest is the payload for POST /v1/sessions/{id}/powerups/use.
type UsePowerUpRequest struct {
	Team    int    `json:"team"`
	PowerUp string `json:"power_up"`
}

// CreateDraft handles POST /v1/drafts
func (h *HTTPHandlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}
	if req.Team1Name == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "team1_name is required", "team1_name")
		return
	}
	if req.Team2Name == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "team2_name is required", "team2_name")
		return
	}

	d := h.service.CreateDraft(r.Context(), req.Team1Name, req.Team2Name)
	h.respondJSON(w, http.StatusCreated, d)
}

// GetDraft handles GET /v1/drafts/{id}
func (h *HTTPHandlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	draftID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidDraftID)
	if !ok {
		return
	}

	d, err := h.service.Draft(r.Context(), draftID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, d)
}

// Pick handles POST /v1/drafts/{id}/picks
func (h *HTTPHandlers) Pick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	draftID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidDraftID)
	if !ok {
		return
	}

	var req PickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}
	if req.CategoryID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "category_id is required", "category_id")
		return
	}

	d, outcome, err := h.service.Pick(r.Context(), draftID, req.CategoryID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, PickResponse{Outcome: outcome, Draft: d})
}

// CreateSession handles POST /v1/sessions
func (h *HTTPHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}
	draftID, err := uuid.Parse(req.DraftID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidDraftID, "draft_id must be a UUID", "draft_id")
		return
	}
	if req.Mode == "" {
		req.Mode = ModePoints
	}
	if !req.Mode.Valid() {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidMode, "mode must be points or diamond", "mode")
		return
	}

	snap, err := h.service.CreateSession(r.Context(), draftID, req.Mode)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) || errors.Is(err, ErrDraftIncomplete) {
			h.respondServiceError(w, err)
			return
		}
		h.logger.Error().Err(err).Str("draft_id", req.DraftID).Msg("failed to create session")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionCreateFailed, "Failed to create session")
		return
	}
	h.respondJSON(w, http.StatusCreated, snap)
}

// GetBoard handles GET /v1/sessions/{id}/board
func (h *HTTPHandlers) GetBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	snap, err := h.service.Snapshot(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

// OpenCell handles POST /v1/sessions/{id}/cells/open
func (h *HTTPHandlers) OpenCell(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	var req OpenCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}
	if req.CategoryID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "category_id is required", "category_id")
		return
	}

	cell := CellKey{CategoryID: req.CategoryID, Tier: req.Tier, Slot: req.Slot}
	snap, err := h.service.OpenCell(r.Context(), sessionID, cell)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

// SetTimer handles POST /v1/sessions/{id}/timer
func (h *HTTPHandlers) SetTimer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	var req TimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}

	snap, err := h.service.SetTimer(r.Context(), sessionID, req.Running)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

// Reveal handles POST /v1/sessions/{id}/reveal
func (h *HTTPHandlers) Reveal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	snap, err := h.service.Reveal(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

// Resolve handles POST /v1/sessions/{id}/resolve
func (h *HTTPHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}
	if req.Team < 0 || req.Team > 2 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidTeam, "team must be 0, 1, or 2", "team")
		return
	}

	snap, err := h.service.Resolve(r.Context(), sessionID, Team(req.Team))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

// UsePowerUp handles POST /v1/sessions/{id}/powerups/use
func (h *HTTPHandlers) UsePowerUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	var req UsePowerUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid JSON payload")
		return
	}
	if req.Team != 1 && req.Team != 2 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidTeam, "team must be 1 or 2", "team")
		return
	}
	kind, err := ParsePowerUpKind(req.PowerUp)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidPowerUp, err.Error(), "power_up")
		return
	}

	snap, err := h.service.UsePowerUp(r.Context(), sessionID, Team(req.Team), kind)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, snap)
}

// Finish handles POST /v1/sessions/{id}/finish
func (h *HTTPHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	score, err := h.service.Finish(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, score)
}

// DeleteSession handles DELETE /v1/sessions/{id}
func (h *HTTPHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := h.pathUUID(w, r, httperrors.ErrCodeInvalidSessionID)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathUUID parses the {id} path segment and writes a validation error when it
// is not a UUID.
func (h *HTTPHandlers) pathUUID(w http.ResponseWriter, r *http.Request, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, code, "id must be a UUID", "id")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps gameplay errors onto HTTP responses.
func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDraftNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeDraftNotFound, "Draft not found")
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, ErrDraftIncomplete):
		httperrors.RespondConflict(w, httperrors.ErrCodeDraftIncomplete, "Both teams must pick three categories first")
	case errors.Is(err, ErrQuestionAlreadyOpen):
		httperrors.RespondConflict(w, httperrors.ErrCodeQuestionAlreadyOpen, err.Error())
	case errors.Is(err, ErrNoQuestionOpen):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoQuestionOpen, err.Error())
	case errors.Is(err, ErrCellNotPlayable):
		httperrors.RespondConflict(w, httperrors.ErrCodeCellNotPlayable, err.Error())
	case errors.Is(err, ErrActionPending):
		httperrors.RespondConflict(w, httperrors.ErrCodeConflict, err.Error())
	case errors.Is(err, ErrPowerUpNotAvailable):
		httperrors.RespondConflict(w, httperrors.ErrCodePowerUpNotAvailable, err.Error())
	case errors.Is(err, ErrInvalidTeam):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidTeam, err.Error())
	default:
		h.logger.Error().Err(err).Msg("unhandled gameplay error")
		httperrors.RespondInternalError(w, "Internal server error")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
