package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sakif/hypeshelf/internal/apperror"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// decodeJSON reads a JSON body into dst. Field rules are checked by the
// service after it has resolved the caller, never here.
//
// Unknown fields are ignored: a "userId" sent in a create payload has no
// DTO field to land in and is dropped.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("", "request body is required")
		}
		return apperror.ValidationFailed("", "invalid JSON body")
	}
	return nil
}
