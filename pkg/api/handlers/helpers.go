package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chatcore/pkg/auth"
	"chatcore/pkg/errs"
	"chatcore/pkg/logger"
	"chatcore/pkg/utils"
)

// principal resolves the acting user for the request or writes the
// appropriate error response and returns false.
func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, status, msg := auth.ResolvePrincipal(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return "", false
	}
	return id, true
}

// writeErr maps the core error kinds onto HTTP statuses. Storage failures
// are logged server-side and surface as an opaque 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var v *errs.ValidationError
	switch {
	case errors.As(err, &v):
		utils.JSONError(w, http.StatusBadRequest, v.Msg)
	case errors.Is(err, errs.ErrForbidden):
		utils.JSONError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, errs.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrStorage):
		logger.Error("storage_failure", "path", r.URL.Path, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	default:
		logger.Error("unhandled_error", "path", r.URL.Path, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func intQuery(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func int64Query(r *http.Request, name string, def int64) int64 {
	if s := r.URL.Query().Get(name); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
