package handlers

import (
	"net/http"
	"strings"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
)

type credentials struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

func (c *credentials) valid() bool {
	c.Nickname = strings.TrimSpace(c.Nickname)
	return c.Nickname != "" && c.Password != ""
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decodeBody(w, r, &body) {
		return
	}
	if !body.valid() {
		http.Error(w, "nickname and password are required", http.StatusBadRequest)
		return
	}
	res, err := h.svcs.Auth.Login(r.Context(), body.Nickname, body.Password)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decodeBody(w, r, &body) {
		return
	}
	if !body.valid() {
		http.Error(w, "nickname and password are required", http.StatusBadRequest)
		return
	}
	res, err := h.svcs.Auth.Register(r.Context(), body.Nickname, body.Password)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := h.svcs.Auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.svcs.Auth.Me(r.Context(), claims.UserID)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
