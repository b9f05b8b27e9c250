package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Draft errors
	ErrCodeDraftNotFound   = "draft_not_found"
	ErrCodeDraftIncomplete = "draft_incomplete"
	ErrCodePickRejected    = "pick_rejected"
	ErrCodeInvalidDraftID  = "invalid_draft_id"

	// Session errors
	ErrCodeSessionNotFound     = "session_not_found"
	ErrCodeInvalidSessionID    = "invalid_session_id"
	ErrCodeSessionCreateFailed = "session_create_failed"
	ErrCodeCellNotPlayable     = "cell_not_playable"
	ErrCodeQuestionAlreadyOpen = "question_already_open"
	ErrCodeNoQuestionOpen      = "no_question_open"
	ErrCodeInvalidTeam         = "invalid_team"
	ErrCodePowerUpNotAvailable = "power_up_not_available"
	ErrCodeInvalidPowerUp      = "invalid_power_up"
	ErrCodeInvalidMode         = "invalid_mode"

	// Results errors
	ErrCodeResultsFetchFailed = "results_fetch_failed"

	// WebSocket errors
	ErrCodeInvalidPayload = "invalid_payload"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
