package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/session"
)

type requestBodyTooLargeError struct {
	Limit int64
}

func (e *requestBodyTooLargeError) Error() string {
	return fmt.Sprintf("request body too large (max %d bytes)", e.Limit)
}

// DecodeBody decodes a single JSON value from the request body into v,
// rejecting unknown fields and trailing data.
func DecodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if tooLarge := asTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if tooLarge := asTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return errors.New("invalid request body: must contain a single JSON value")
	}
	return nil
}

func asTooLarge(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &requestBodyTooLargeError{Limit: maxErr.Limit}
	}
	return nil
}

// ParseBoolQuery parses an optional boolean query parameter.
// Returns nil when the parameter is not present.
func ParseBoolQuery(r *http.Request, key string) (*bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s: must be true or false", key)
	}
	return &b, nil
}

func decodeBodyOrWriteInvalid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeBody(r, v); err != nil {
		writeDecodeBodyError(w, err)
		return false
	}
	return true
}

// boolQueryOrWriteInvalid returns the parameter, def when absent.
func boolQueryOrWriteInvalid(w http.ResponseWriter, r *http.Request, key string, def bool) (bool, bool) {
	v, err := ParseBoolQuery(r, key)
	if err != nil {
		writeInvalidArgument(w, err.Error())
		return false, false
	}
	if v == nil {
		return def, true
	}
	return *v, true
}

func requirePathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		writeInvalidArgument(w, name+": must not be empty")
		return "", false
	}
	return value, true
}

// requirePrincipal returns the signed-in principal or writes CONFLICT.
func requirePrincipal(w http.ResponseWriter, tracker *session.Tracker) (model.Principal, bool) {
	p := tracker.Current()
	if p == nil {
		writeServiceError(w, conflictError("not signed in"))
		return model.Principal{}, false
	}
	return *p, true
}
