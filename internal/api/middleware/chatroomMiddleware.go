package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const companyIDKey ctxKey = iota + 100

// CompanyParam parses the {companyId} route parameter of a chat room route.
func CompanyParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyIDStr := chi.URLParam(r, "companyId")
		if companyIDStr == "" {
			http.Error(w, "Company ID is required", http.StatusBadRequest)
			return
		}
		companyID, err := strconv.ParseInt(companyIDStr, 10, 64)
		if err != nil || companyID <= 0 {
			http.Error(w, "Invalid company ID format", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), companyIDKey, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CompanyIDFromContext returns the id parsed by CompanyParam.
func CompanyIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(companyIDKey).(int64)
	return id
}
