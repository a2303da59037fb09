package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// msgResponse is the error/acknowledgement body shape the storefront client
// expects: {"msg": "..."}.
type msgResponse struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, msgResponse{Msg: msg})
}

// serverError logs the failure and responds with a generic 500. Storage and
// other collaborator failures never leak details to the client.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeMsg(w, http.StatusInternalServerError, "Server error")
}
