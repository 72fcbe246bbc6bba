package http

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const statusError = "error"

// shortenRequest is the body of POST /shorten.
type shortenRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

type shortenResponse struct {
	ShortURL string `json:"short_url"`
}

// dashboardEntry is encoded as a two element array: [original_url, access_count].
type dashboardEntry struct {
	OriginalURL string
	AccessCount int64
}

func (e dashboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.OriginalURL, e.AccessCount})
}

type dashboardResponse map[string]dashboardEntry

func toDashboardResponse(report entity.Report) dashboardResponse {
	resp := make(dashboardResponse, len(report))
	for code, entry := range report {
		resp[code] = dashboardEntry{
			OriginalURL: entry.OriginalURL,
			AccessCount: entry.AccessCount,
		}
	}

	return resp
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// shortenErrorResponse reports a failed shortening together with its cause.
func shortenErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "failed to shorten url: " + err.Error(),
	}
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "http_url":
		return "must be an absolute http or https url"
	default:
		return "invalid value"
	}
}

func validationErrorResponse(err error) errorResponse {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  validationErrs,
	}
}
