package handlers

import (
	"encoding/json"
	"net/http"

	pkgerrors "biolink-gateway/pkg/errors"

	"go.uber.org/zap"
)

// responder writes JSON bodies and delegates failures to the error handler
type responder struct {
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

func (r responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		r.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (r responder) respondError(w http.ResponseWriter, req *http.Request, err error) {
	r.errors.Handle(w, req, err)
}
