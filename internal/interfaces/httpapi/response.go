package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "fantasy-hoops"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{context.DeadlineExceeded, mappedError{http.StatusGatewayTimeout, "deadlineExceeded", "DEADLINE_EXCEEDED"}},
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(_ context.Context, w http.ResponseWriter, err error) {
	writeErrorBody(w, mapError(err), err.Error())
}

// writeInternalError hides the cause; it is used after a recovered panic.
func writeInternalError(_ context.Context, w http.ResponseWriter) {
	writeErrorBody(w, internalError, "internal server error")
}

func writeErrorBody(w http.ResponseWriter, mapped mappedError, message string) {
	writeJSON(w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: message,
			}},
		},
	})
}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalError
}
