// Package respond renders the uniform JSON envelope used by every endpoint:
// {data, code, msg} where code mirrors the HTTP status and data is null on
// error.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"appupdate-service/internal/apperror"
)

// Envelope is the wire shape of every response body.
type Envelope struct {
	Data any    `json:"data"`
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// OK writes a 200 envelope with the given payload.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Data: data, Code: http.StatusOK, Msg: "ok"})
}

// Err classifies err (apperror kinds, internal otherwise) and writes the
// matching status with a null data field. Internal causes are not exposed.
func Err(w http.ResponseWriter, err error) {
	status := apperror.KindOf(err).Status()
	msg := "internal server error"
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		msg = ae.Msg
	}
	write(w, status, Envelope{Data: nil, Code: status, Msg: msg})
}

// DecodeJSON parses a request body, classifying malformed JSON as a bad
// request before any flow logic runs.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.BadRequest(fmt.Sprintf("invalid json: %s", err))
	}
	return nil
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
