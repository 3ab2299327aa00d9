package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/container"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/views"
)

// maxUploadSize bounds multipart bodies; phone photos of receipts fit comfortably
const maxUploadSize = int64(20 << 20)

type userHandler func(w http.ResponseWriter, r *http.Request, user session.User)

// withUser loads the session record and sends anonymous visitors to the login page
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := session.Load(r)
		if err != nil {
			http.Redirect(w, r, routes.Login, http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

// withAPIUser loads the session record and refuses anonymous API calls
func (s *Server) withAPIUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := session.Load(r)
		if err != nil {
			jsonError(w, "Not connected", http.StatusUnauthorized)
			return
		}
		next(w, r, user)
	}
}

// navigator turns container navigation into a redirect
func navigator(w http.ResponseWriter, r *http.Request) container.Navigator {
	return func(path string) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

func writeHTML(w http.ResponseWriter, status int, html string, err error) {
	if err != nil {
		slog.Error("Error rendering page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, html)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Load(r); err == nil {
		http.Redirect(w, r, routes.Bills, http.StatusSeeOther)
		return
	}
	html, err := views.LoginUI(views.LoginPage{})
	writeHTML(w, http.StatusOK, html, err)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		html, renderErr := views.LoginUI(views.LoginPage{Error: "Formulaire invalide"})
		writeHTML(w, http.StatusBadRequest, html, renderErr)
		return
	}

	user := session.User{
		Type:  r.PostForm.Get("type"),
		Email: strings.TrimSpace(r.PostForm.Get("email")),
	}
	if user.Type == "" {
		user.Type = session.TypeEmployee
	}
	if user.Email == "" || (user.Type != session.TypeEmployee && user.Type != session.TypeAdmin) {
		html, err := views.LoginUI(views.LoginPage{Error: "Veuillez renseigner un email valide"})
		writeHTML(w, http.StatusBadRequest, html, err)
		return
	}

	if err := session.Save(w, user); err != nil {
		slog.Error("Error saving session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slog.Info("User connected", "email", user.Email, "type", user.Type)
	http.Redirect(w, r, routes.Bills, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w)
	http.Redirect(w, r, routes.Login, http.StatusSeeOther)
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request, user session.User) {
	page := container.NewBills(s.store, user, navigator(w, r)).FetchAndRenderList(r.Context())
	status := http.StatusOK
	if page.Error != "" {
		status = http.StatusInternalServerError
	}
	html, err := views.BillsUI(page)
	writeHTML(w, status, html, err)
}

func (s *Server) handleViewReceipt(w http.ResponseWriter, r *http.Request, user session.User) {
	page, err := container.NewBills(s.store, user, navigator(w, r)).OpenReceipt(r.Context(), r.PathValue("id"))
	if errors.Is(err, container.ErrBillNotFound) {
		html, renderErr := views.ErrorUI("Erreur 404 : note de frais introuvable")
		writeHTML(w, http.StatusNotFound, html, renderErr)
		return
	}
	status := http.StatusOK
	if page.Error != "" {
		status = http.StatusInternalServerError
	}
	html, err := views.BillsUI(page)
	writeHTML(w, status, html, err)
}

func (s *Server) handleNewBillPage(w http.ResponseWriter, r *http.Request, user session.User) {
	page := views.NewBillPage{}
	if upload, ok := s.drafts.Get(user.Email); ok {
		page.ReceiptName = upload.FileName
	}
	html, err := views.NewBillUI(page)
	writeHTML(w, http.StatusOK, html, err)
}

// readFile returns the "file" part of a multipart request, or ok=false when none was sent
func readFile(r *http.Request) (container.File, bool, error) {
	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return container.File{}, false, nil
	}
	if err != nil {
		return container.File{}, false, err
	}
	defer f.Close()

	if header.Filename == "" {
		return container.File{}, false, nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return container.File{}, false, err
	}
	return container.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}

// changeFile runs the file selection step and keeps the user's draft in sync with it
func (s *Server) changeFile(r *http.Request, user session.User, nb *container.NewBill, f container.File) error {
	if err := nb.HandleChangeFile(r.Context(), f); err != nil {
		if errors.Is(err, container.ErrUnsupportedReceipt) {
			receiptsRejectedTotal.Inc()
			s.drafts.Remove(user.Email)
		}
		return err
	}
	receiptsUploadedTotal.Inc()
	if upload, ok := nb.Receipt(); ok {
		s.drafts.Put(user.Email, upload)
	}
	return nil
}

// handleUploadReceipt is the file selection step on its own
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request, user session.User) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	f, ok, err := readFile(r)
	if err != nil {
		slog.Error("Error reading file", "error", err)
		jsonError(w, "Error reading file. Please try again.", http.StatusBadRequest)
		return
	}
	if !ok {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}

	var alert string
	nb := container.OpenNewBill(s.store, user, navigator(w, r), func(msg string) { alert = msg })
	if err := s.changeFile(r, user, nb, f); err != nil {
		if errors.Is(err, container.ErrUnsupportedReceipt) {
			jsonError(w, alert, http.StatusBadRequest)
			return
		}
		jsonError(w, "Error storing receipt", http.StatusInternalServerError)
		return
	}

	upload, _ := nb.Receipt()
	writeJSON(w, http.StatusCreated, upload)
}

func formFromRequest(r *http.Request) bill.Form {
	return bill.Form{
		Type:       r.PostFormValue("expense-type"),
		Name:       r.PostFormValue("expense-name"),
		Date:       r.PostFormValue("datepicker"),
		Amount:     r.PostFormValue("amount"),
		VAT:        r.PostFormValue("vat"),
		Pct:        r.PostFormValue("pct"),
		Commentary: r.PostFormValue("commentary"),
	}
}

// handleSubmitBill handles the new bill form. A file sent along is uploaded first,
// otherwise the receipt uploaded earlier by the user is used.
func (s *Server) handleSubmitBill(w http.ResponseWriter, r *http.Request, user session.User) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		slog.Error("Error parsing multipart form", "error", err)
		html, renderErr := views.NewBillUI(views.NewBillPage{Error: "Le formulaire n'a pas pu être lu"})
		writeHTML(w, http.StatusBadRequest, html, renderErr)
		return
	}

	page := views.NewBillPage{Form: formFromRequest(r)}
	nb := container.OpenNewBill(s.store, user, navigator(w, r), func(msg string) { page.Alert = msg })
	if upload, ok := s.drafts.Get(user.Email); ok {
		nb.Restore(upload)
	}

	f, ok, err := readFile(r)
	if err != nil {
		slog.Error("Error reading file", "error", err)
		page.Error = "Le justificatif n'a pas pu être lu"
		html, renderErr := views.NewBillUI(page)
		writeHTML(w, http.StatusBadRequest, html, renderErr)
		return
	}
	if ok {
		if err := s.changeFile(r, user, nb, f); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, container.ErrUnsupportedReceipt) {
				status = http.StatusBadRequest
			} else {
				page.Error = "Le justificatif n'a pas pu être enregistré"
			}
			html, renderErr := views.NewBillUI(page)
			writeHTML(w, status, html, renderErr)
			return
		}
	}
	if upload, ok := nb.Receipt(); ok {
		page.ReceiptName = upload.FileName
	}

	if _, err := nb.HandleSubmit(r.Context(), page.Form); err != nil {
		status := http.StatusInternalServerError
		if isInputError(err) {
			status = http.StatusBadRequest
		}
		page.Error = submitMessage(err)
		html, renderErr := views.NewBillUI(page)
		writeHTML(w, status, html, renderErr)
		return
	}

	billsSubmittedTotal.Inc()
	s.drafts.Remove(user.Email)
}

func isInputError(err error) bool {
	return errors.Is(err, container.ErrReceiptRequired) ||
		errors.Is(err, container.ErrMissingField) ||
		errors.Is(err, container.ErrInvalidField)
}

func submitMessage(err error) string {
	switch {
	case errors.Is(err, container.ErrReceiptRequired):
		return "Veuillez joindre un justificatif"
	case errors.Is(err, container.ErrMissingField), errors.Is(err, container.ErrInvalidField):
		return "Champ invalide : " + err.Error()
	default:
		return "La note de frais n'a pas pu être enregistrée"
	}
}

// handleReceiptFile serves a stored receipt to the owner of its bill, or to an admin.
// Stored names start with the bill ID.
func (s *Server) handleReceiptFile(w http.ResponseWriter, r *http.Request, user session.User) {
	name := r.PathValue("name")
	billID, _, ok := strings.Cut(name, "_")
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	b, err := s.store.Get(r.Context(), billID)
	if err != nil || b.FileURL != bill.ReceiptsPath+name || (!user.IsAdmin() && b.Email != user.Email) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	data, contentType, err := s.store.ReceiptFile(r.Context(), name)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
