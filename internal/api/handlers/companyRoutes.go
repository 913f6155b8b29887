package handlers

import (
	"net/http"
)

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svcs.Companies.List(r.Context())
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}
