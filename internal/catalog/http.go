package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/nbkbattle/nbk-battle/pkg/http/errors"
)

// HTTPHandlers serves the category listing for the draft screen.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "catalog_http").Logger(),
	}
}

// ListCategories handles GET /v1/categories
func (h *HTTPHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cats, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list categories")
		httperrors.RespondInternalError(w, "Failed to list categories")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"categories": cats}); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
