package results

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	httperrors "github.com/nbkbattle/nbk-battle/pkg/http/errors"
)

// HTTPHandlers serves the recent-games feed.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "results_http").Logger(),
	}
}

// Recent handles GET /v1/results/recent?limit=
func (h *HTTPHandlers) Recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "limit must be a positive integer", "limit")
			return
		}
		limit = parsed
	}

	entries, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load recent results")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeResultsFetchFailed, "Failed to load recent results")
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"results": entries}); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
