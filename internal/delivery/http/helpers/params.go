package helpers

import (
	"net/http"

	"github.com/google/uuid"
)

// UUIDPathValue reads a path parameter that must be a UUID. On failure it writes
// the error response and returns false.
func UUIDPathValue(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteValidationError(w, map[string]string{name: "must be a valid UUID"})
		return "", false
	}
	return id.String(), true
}

// TokenPathValue reads a non-empty opaque token from the path. A missing token is a 404.
func TokenPathValue(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	token := r.PathValue(name)
	if token == "" {
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return "", false
	}
	return token, true
}
