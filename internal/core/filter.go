package core

import "net/url"

// FilterAll is the sentinel meaning "no constraint on this axis".
// Sentinel axes are never sent to the store as literal filter values.
const FilterAll = "all"

// FilterCriteria holds the active scoping state for the transaction
// list. The zero value is not useful; start from NewFilterCriteria.
type FilterCriteria struct {
	Type       string // "all", "income" or "expense"
	CategoryID string // "all" or a category id
	StartDate  Date   // zero value means no lower bound
	EndDate    Date   // zero value means no upper bound
}

// FilterPatch is a partial update to FilterCriteria. Nil fields keep
// the current value.
type FilterPatch struct {
	Type       *string
	CategoryID *string
	StartDate  *Date
	EndDate    *Date
}

// NewFilterCriteria returns the unconstrained default criteria.
func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{Type: FilterAll, CategoryID: FilterAll}
}

// Merge applies the patch and returns a complete FilterCriteria.
// Empty strings on patched axes normalize to the "all" sentinel so no
// axis is ever left ambiguous.
func (f FilterCriteria) Merge(p FilterPatch) FilterCriteria {
	out := f
	if p.Type != nil {
		out.Type = normalizeAxis(*p.Type)
	}
	if p.CategoryID != nil {
		out.CategoryID = normalizeAxis(*p.CategoryID)
	}
	if p.StartDate != nil {
		out.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		out.EndDate = *p.EndDate
	}
	if out.Type == "" {
		out.Type = FilterAll
	}
	if out.CategoryID == "" {
		out.CategoryID = FilterAll
	}
	return out
}

func normalizeAxis(v string) string {
	if v == "" {
		return FilterAll
	}
	return v
}

// Query maps the criteria to store query parameters, omitting every
// sentinel or absent axis. Pure; no date-order validation is performed
// here, an inverted range is passed through to the store unchanged.
func (f FilterCriteria) Query() url.Values {
	params := url.Values{}
	if f.Type != FilterAll && f.Type != "" {
		params.Set("type", f.Type)
	}
	if f.CategoryID != FilterAll && f.CategoryID != "" {
		params.Set("category_id", f.CategoryID)
	}
	if !f.StartDate.IsEmpty() {
		params.Set("start_date", f.StartDate.String())
	}
	if !f.EndDate.IsEmpty() {
		params.Set("end_date", f.EndDate.String())
	}
	return params
}
