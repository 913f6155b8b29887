package handlers

import (
	"net/http"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
)

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	page, size, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid page or size", http.StatusBadRequest)
		return
	}
	res, err := h.svcs.Subscriptions.List(r.Context(), claims.UserID, page, size)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var body struct {
		CompanyID int64 `json:"companyId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	sub, err := h.svcs.Subscriptions.Create(r.Context(), claims.UserID, body.CompanyID)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "invalid subscription ID", http.StatusBadRequest)
		return
	}
	if err := h.svcs.Subscriptions.Delete(r.Context(), claims.UserID, id); err != nil {
		h.httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
