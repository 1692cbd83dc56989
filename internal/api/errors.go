package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Resinat/launchview/internal/netutil"
	"github.com/Resinat/launchview/internal/spacex"
)

// ServiceError is an error with an API error code.
type ServiceError struct {
	Code    string // INVALID_ARGUMENT, NOT_FOUND, CONFLICT, INTERNAL
	Message string
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

func invalidArgumentError(message string) *ServiceError {
	return &ServiceError{
		Code:    "INVALID_ARGUMENT",
		Message: message,
	}
}

func conflictError(message string) *ServiceError {
	return &ServiceError{
		Code:    "CONFLICT",
		Message: message,
	}
}

func writeInvalidArgument(w http.ResponseWriter, message string) {
	writeServiceError(w, invalidArgumentError(message))
}

func writePayloadTooLarge(w http.ResponseWriter, limit int64) {
	msg := "request body too large"
	if limit > 0 {
		msg = "request body too large (max " + strconv.FormatInt(limit, 10) + " bytes)"
	}
	WriteError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", msg)
}

func writeDecodeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *requestBodyTooLargeError
	if errors.As(err, &tooLarge) {
		writePayloadTooLarge(w, tooLarge.Limit)
		return
	}
	writeInvalidArgument(w, err.Error())
}

// writeServiceError maps service errors to HTTP response codes.
func writeServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		var status int
		switch svcErr.Code {
		case "INVALID_ARGUMENT":
			status = http.StatusBadRequest
		case "NOT_FOUND":
			status = http.StatusNotFound
		case "CONFLICT":
			status = http.StatusConflict
		default:
			status = http.StatusInternalServerError
		}
		WriteError(w, status, svcErr.Code, svcErr.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

// writeUpstreamError maps a launches API failure. Remote rejections are
// passed through as-is; anything that never got a status is unavailability.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, spacex.ErrNotFound), netutil.StatusCode(err) == http.StatusNotFound:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "launch not found")
	case netutil.StatusCode(err) != 0:
		WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR",
			"launches API responded "+strconv.Itoa(netutil.StatusCode(err)))
	case netutil.IsConnectivityError(err):
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "launches API unreachable and no cached copy")
	default:
		writeServiceError(w, err)
	}
}
