package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/hongminglow/users-api/internal/http/respond"
	"github.com/hongminglow/users-api/internal/logger"
	"github.com/hongminglow/users-api/internal/storage"
	"github.com/hongminglow/users-api/internal/users"
)

const maxBodyBytes = 1 << 20

var errInvalidID = errors.New("id must be a positive integer")

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON payload: body must contain a single object")
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// writeServiceError maps users/storage errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 with a generic description.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *users.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, users.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "username or email already exists")
	default:
		logger.Error(r.Context()).Err(err).Msgf("failed to %s", action)
		respond.Error(w, http.StatusInternalServerError, "failed to "+action)
	}
}
