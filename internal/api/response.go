package api

import (
	"errors"
	"net/http"

	"stockanalyzer/pkg/stockanalyzer"
)

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeErrorResponse writes an error response, mapping structured analysis
// errors to their HTTP status. The fallback status is used for plain errors.
func writeErrorResponse(w http.ResponseWriter, fallbackStatus int, err error) {
	status := fallbackStatus
	response := ErrorResponse{Message: err.Error()}

	var serr *stockanalyzer.Error
	if errors.As(err, &serr) {
		status = statusForErrorCode(serr.Code)
		response.ErrorCode = string(serr.Code)
	}
	response.Code = status
	writeJSON(w, status, response)
}
