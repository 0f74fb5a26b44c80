package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"backoffice/internal/platform/apperror"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("write json failed", zap.Error(err))
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailError renders err in the envelope. Errors that are not an AppError are
// logged and reported as INTERNAL_ERROR without their message.
func FailError(w http.ResponseWriter, err error, requestID string) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		zap.L().Error("unhandled error", zap.String("request_id", requestID), zap.Error(err))
		Fail(w, http.StatusInternalServerError, apperror.CodeInternalError, "internal server error", requestID)
		return
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("request_id", requestID), zap.String("code", appErr.Code), zap.Error(err))
	}
	if len(appErr.Fields) > 0 {
		FailWithDetails(w, appErr.HTTPStatus, appErr.Code, appErr.Message, map[string]any{"fields": appErr.Fields}, requestID)
		return
	}
	Fail(w, appErr.HTTPStatus, appErr.Code, appErr.Message, requestID)
}
