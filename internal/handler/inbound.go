package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/code-resources/internal/service"
)

// FormHandler accepts the public newsletter and contact forms. Both POST
// routes sit behind the per-IP rate limiter.
type FormHandler struct {
	newsletter *service.NewsletterService
	contact    *service.ContactService
	logger     *slog.Logger
}

func NewFormHandler(newsletter *service.NewsletterService, contact *service.ContactService, logger *slog.Logger) *FormHandler {
	return &FormHandler{newsletter: newsletter, contact: contact, logger: logger}
}

type subscribeResponse struct {
	Email            string `json:"email"`
	UnsubscribeToken string `json:"unsubscribeToken"`
}

// HandleSubscribe signs an email up for the newsletter.
//
// HTTP: POST /api/newsletter
// REQUEST BODY: {"email": "dev@example.com"}
func (h *FormHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var in service.NewsletterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	sub, err := h.newsletter.Subscribe(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscribeResponse{Email: sub.Email, UnsubscribeToken: sub.Token})
}

// HandleUnsubscribe removes the subscription holding the token.
//
// HTTP: DELETE /api/newsletter/{token}
func (h *FormHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.newsletter.Unsubscribe(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleContact stores a contact form message.
//
// HTTP: POST /api/contact
// REQUEST BODY: {"name": "...", "email": "...", "subject": "...", "message": "..."}
func (h *FormHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg, err := h.contact.Submit(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      msg.ID,
		"message": "thanks, we will get back to you soon",
	})
}
