package handlers

import (
	"net/http"

	middleware "github.com/markdave123-py/insightcart/internal/api/middlewares"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/models"
	"github.com/markdave123-py/insightcart/internal/services"
)

type AuthHandler struct {
	registry *services.Registry
	tokens   *middleware.SessionTokens
	log      *logger.Logger
}

func NewAuthHandler(registry *services.Registry, tokens *middleware.SessionTokens, log *logger.Logger) *AuthHandler {
	return &AuthHandler{registry: registry, tokens: tokens, log: log}
}

type loginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token   string                `json:"token"`
	User    *models.User          `json:"user"`
	Session services.SessionState `json:"session"`
}

// Login fabricates a user. An existing session is reused, otherwise a new
// one is started.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		sess = h.registry.Create()
	}

	user, err := sess.Login(r.Context(), req.Name, req.Email)
	if err != nil {
		h.log.Error("login failed", "error", err)
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(sess.ID(), user.ID)
	if err != nil {
		h.log.Error("token signing failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user, Session: sess.State()})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := sess.Logout(r.Context()); err != nil {
		h.log.Error("logout failed", "error", err)
		writeError(w, err)
		return
	}
	h.registry.Drop(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the caller's state; anonymous callers are on the auth view.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, services.SessionState{View: services.ViewAuth, CompareSelection: []string{}})
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

type navigateRequest struct {
	View string `json:"view"`
}

func (h *AuthHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.View == "back" {
		sess.Back()
		writeJSON(w, http.StatusOK, sess.State())
		return
	}
	view, err := services.ParseView(req.View)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := sess.Navigate(view); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

// requireSession writes 401 when the request carries no session.
func requireSession(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, services.ErrNoActiveUser)
		return nil, false
	}
	return sess, true
}
