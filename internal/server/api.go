package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/container"
	"github.com/zombor/billed/internal/session"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request, user session.User) {
	rows, err := container.NewBills(s.store, user, func(string) {}).GetBills(r.Context())
	if err != nil {
		slog.Error("Error listing bills", "email", user.Email, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleUpdateBill completes the bill created by the user's last upload
func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request, user session.User) {
	key := r.PathValue("key")
	upload, ok := s.drafts.Get(user.Email)
	if !ok || upload.Key != key {
		jsonError(w, "Unknown bill", http.StatusNotFound)
		return
	}

	var form bill.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	nb := container.OpenNewBill(s.store, user, func(string) {}, func(string) {})
	nb.Restore(upload)
	saved, err := nb.HandleSubmit(r.Context(), form)
	if err != nil {
		status := http.StatusInternalServerError
		if isInputError(err) {
			status = http.StatusBadRequest
		}
		if errors.Is(err, container.ErrReceiptRequired) {
			status = http.StatusConflict
		}
		jsonError(w, err.Error(), status)
		return
	}

	billsSubmittedTotal.Inc()
	s.drafts.Remove(user.Email)
	writeJSON(w, http.StatusOK, saved)
}
