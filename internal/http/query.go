package http

import (
	"errors"
	"net/http"
	"strings"

	"fincas/internal/core"
	"fincas/internal/store"
)

// parseTransactionFilter turns list query parameters into a store
// filter. Absent parameters mean no constraint. An inverted date range
// is rejected outright rather than silently returning nothing.
func parseTransactionFilter(r *http.Request) (store.TransactionFilter, error) {
	var f store.TransactionFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if !typ.IsValid() {
			return f, errors.New("type must be income or expense")
		}
		f.Type = typ
	}
	if v := strings.TrimSpace(q.Get("category_id")); v != "" {
		f.CategoryID = v
	}
	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, errors.New("start_date must be YYYY-MM-DD")
		}
		f.StartDate = d
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, errors.New("end_date must be YYYY-MM-DD")
		}
		f.EndDate = d
	}
	if !f.StartDate.IsEmpty() && !f.EndDate.IsEmpty() && f.StartDate.Time.After(f.EndDate.Time) {
		return f, errors.New("start_date must not be after end_date")
	}
	return f, nil
}
