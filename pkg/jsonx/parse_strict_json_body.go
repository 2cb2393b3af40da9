package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var (
	ErrEmptyBody    = errors.New("empty body")
	ErrTrailingJSON = errors.New("trailing data")
)

// maxBodyBytes caps how much of a request body ParseStrictJSONBody will
// read; /start request bodies are a handful of fields, never megabytes.
const maxBodyBytes = 1 << 20

// ParseStrictJSONBody reads and strictly decodes a JSON HTTP request body
// into dst: rejects unknown fields, trailing JSON values, and an empty
// body. Callers map any returned error to 400.
func ParseStrictJSONBody[T any](r *http.Request, dst *T) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingJSON
	}
	return nil
}
