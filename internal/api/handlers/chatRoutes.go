package handlers

import (
	"net/http"
	"strconv"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

// RoomMessages serves the recent history of a company chat room. It is public so
// visitors can read before joining.
func (h *Handler) RoomMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	msgs, err := h.svcs.Chat.History(r.Context(), middleware.CompanyIDFromContext(r.Context()), limit)
	if err != nil {
		h.httpError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
