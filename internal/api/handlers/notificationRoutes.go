package handlers

import (
	"net/http"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	page, size, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid page or size", http.StatusBadRequest)
		return
	}
	res, err := h.svcs.Notifications.List(r.Context(), claims.UserID, page, size)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "invalid notification ID", http.StatusBadRequest)
		return
	}
	if err := h.svcs.Notifications.Delete(r.Context(), claims.UserID, id); err != nil {
		h.httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateReport records a crowd report and notifies the company's subscribers.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var report models.Report
	if !decodeBody(w, r, &report) {
		return
	}
	notified, err := h.svcs.Notifications.Report(r.Context(), claims.Nickname, report)
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"notified": notified})
}
