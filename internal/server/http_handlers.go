package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"placementpulse/internal/errors"
	"placementpulse/internal/types"
)

// healthHandler reports service health including model and OCR state.
// OCR with an open circuit breaker degrades the service.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "placementpulse",
		"version": s.Version,
	}

	if s.predictor != nil {
		response["model"] = s.predictor.Status()
	}

	healthy := true
	if s.ocr != nil && s.ocr.OCREnabled() {
		stats := s.ocr.OCRStats()
		response["ocr"] = stats
		if ok, exists := stats["healthy"].(bool); exists && !ok {
			healthy = false
		}
	} else {
		response["ocr"] = map[string]any{"enabled": false}
	}

	if s.vaultWatcher != nil {
		response["vault"] = s.vaultWatcher.Status()
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service":        "placementpulse",
		"version":        s.Version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"server": map[string]any{
			"max_file_size_bytes":    s.MaxFileSize,
			"max_request_size_bytes": s.MaxRequestSize,
			"api_auth_enabled":       s.apiKeys.len() > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.Stats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyReadError(err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("failed to parse JSON: %v", err), err)
	}
	return nil
}

// bodyReadError converts a body read failure, turning the MaxBytesReader
// limit into FILE_TOO_LARGE.
func bodyReadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	if isBodyTooLarge(err) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge, "request body too large", err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to read request body", err)
}

// statusForError maps an application error to its HTTP status code.
func statusForError(err error) int {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeModelNotReady:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTrainingInProgress:
		return http.StatusConflict
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeAI, errors.ErrorTypeNetwork:
		return http.StatusBadGateway
	case errors.ErrorTypeModel, errors.ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err using its mapped status. Internal failures do
// not leak their message.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path)
	}

	title := http.StatusText(status)
	message := err.Error()
	if appErr, ok := errors.As(err); ok {
		title = appErr.Code
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeErrorResponse(w, title, message, status)
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// modelStatusResponse wraps the predictor status for the status endpoint
type modelStatusResponse struct {
	types.ModelStatus
	Ready bool `json:"ready"`
}
