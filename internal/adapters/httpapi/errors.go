package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/example/questline/internal/apperr"
	"github.com/example/questline/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto its status and a client-safe message.
// Internal causes are logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), logger).WithError(err).WithField("status", status).Error("request failed")
	}

	writeJSON(w, status, errorBody{Error: apperr.PublicMessage(err), Code: string(code)})
}
