package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brightprep/brightprep-be/internal/apperr"
	"github.com/brightprep/brightprep-be/internal/models"
)

// JSON writes an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}

// Error writes the flat error body used by every failure response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Unauthorized writes the fixed 401 body. Authentication failures are
// terminal: callers must return immediately after this.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// InsufficientRole writes the 403 body carrying the required set and the
// caller's actual role.
func InsufficientRole(w http.ResponseWriter, required []models.Role, current models.Role) {
	JSON(w, http.StatusForbidden, map[string]any{
		"error":    "Forbidden - Insufficient permissions",
		"required": required,
		"current":  current,
	})
}

// NotOwner writes the 403 body for a failed resource ownership check.
func NotOwner(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden - You do not own this resource")
}

// Failure maps an application error onto the wire. Unclassified errors
// become a generic 500 so internals never leak to clients.
func Failure(w http.ResponseWriter, err error) {
	if appErr := apperr.As(err); appErr != nil {
		Error(w, appErr.Status, appErr.Message)
		return
	}
	Error(w, http.StatusInternalServerError, "internal server error")
}
