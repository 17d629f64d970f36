package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/invoicing"
	"crm-backend/internal/mailer"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
)

// requestTimeout bounds every handler's database and network work
const requestTimeout = 15 * time.Second

// writeError maps service error kinds onto HTTP statuses. Messages for 400s carry
// the validation detail; everything unexpected is logged and reported generically.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, mailer.ErrMailerNotConfigured):
		http.Error(w, "Email service not configured", http.StatusServiceUnavailable)
	case errors.Is(err, invoicing.ErrRenderFailed):
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
	default:
		log.WithError(err).Error("[API] Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// currentUser reads the authenticated user id, answering 401 when there is none
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} route variable
func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil || id == uuid.Nil {
		http.Error(w, "Invalid "+what+" ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func quoteFilename(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, "") + `"`
}
