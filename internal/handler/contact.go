package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/giftnest/storefront/internal/domain/contact"
)

type contactRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	m, err := contact.NewMessage(req.Name, req.Phone, req.Email, req.Message)
	if err != nil {
		var vErr *contact.ValidationError
		if errors.As(err, &vErr) {
			writeMsg(w, http.StatusBadRequest, "Required fields")
			return
		}
		serverError(w, r, err)
		return
	}

	if err := h.contacts.Create(r.Context(), m); err != nil {
		serverError(w, r, err)
		return
	}
	writeMsg(w, http.StatusOK, "Sent!")
}

func (h *Handler) listContact(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contacts.List(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
