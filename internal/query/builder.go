// Package query turns raw, client-supplied query parameters into a safe,
// bounded database query specification.
//
// A Spec is built by a fixed pipeline of pure stages (filter, sort, field
// projection, pagination, search), each of which only adds to the Spec
// value. The compiled SQL (see sql.go) is always scoped to the requesting
// user unless the principal is an admin; no client-supplied parameter can
// widen that scope.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/acgeoffrey/budget-tracker-api/internal/constants"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// Comparison operators accepted in bracketed filter keys, e.g.
// "amount[gte]=100", mapped to their SQL form. Operator keys outside this
// table are rejected: SQL operators cannot be passed through verbatim the
// way a document store's "$"-prefixed operators could.
var operators = map[string]string{
	"eq":  "=",
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
	"ne":  "<>",
}

// Reserved control parameters stripped before filters are collected.
var reservedParams = map[string]bool{
	constants.QueryParamPage:   true,
	constants.QueryParamLimit:  true,
	constants.QueryParamSort:   true,
	constants.QueryParamFields: true,
	constants.QueryParamSearch: true,
}

// Filter is a single field comparison.
type Filter struct {
	Field string
	Op    string // SQL comparison operator
	Value string
}

// SortField is one component of the ordering.
type SortField struct {
	Field string
	Desc  bool
}

// Spec is the compiled, bounded representation of a client query. It is
// ephemeral: built per request attempt and never stored.
type Spec struct {
	Filters    []Filter
	Search     string
	Sort       []SortField
	Projection []string
	Page       int
	Limit      int
}

// Offset returns the number of rows to skip for the requested page.
func (s *Spec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// Resource describes the queryable surface of a table: which fields may be
// filtered, sorted and projected, which single field backs free-text
// search, and which column ties rows to their owner.
type Resource struct {
	Table       string
	Filterable  map[string]bool
	Sortable    map[string]bool
	Selectable  []string // default projection, in column order
	SearchField string
	DefaultSort []SortField
	OwnerColumn string
}

// selectableSet returns the selectable fields as a set.
func (r *Resource) selectableSet() map[string]bool {
	set := make(map[string]bool, len(r.Selectable))
	for _, f := range r.Selectable {
		set[f] = true
	}
	return set
}

// Build constructs a Spec from raw query parameters for the given
// resource. Stages run in a fixed order: filter, sort, fields, pagination,
// search. Each stage is a pure function over the Spec being built.
func Build(raw url.Values, res *Resource) (*Spec, error) {
	spec := &Spec{
		Page:  constants.DefaultPage,
		Limit: constants.DefaultLimit,
	}

	stages := []func(*Spec, url.Values, *Resource) error{
		applyFilters,
		applySort,
		applyFields,
		applyPagination,
		applySearch,
	}

	for _, stage := range stages {
		if err := stage(spec, raw, res); err != nil {
			return nil, err
		}
	}

	return spec, nil
}

// applyFilters collects every non-reserved parameter as a field filter.
// Plain keys become equality filters; "field[op]" keys use the bracketed
// comparison operator. Field names must be on the resource's allow-list
// and the owner column is never client-filterable.
func applyFilters(spec *Spec, raw url.Values, res *Resource) error {
	for key, values := range raw {
		if reservedParams[key] || len(values) == 0 {
			continue
		}

		field, op, err := parseFilterKey(key)
		if err != nil {
			return err
		}

		if field == res.OwnerColumn || field == "user" {
			// Scoping is applied server-side; silently drop attempts to set it
			continue
		}

		if !res.Filterable[field] {
			return utils.NewValidationError(field, fmt.Sprintf("Cannot filter on field '%s'", field))
		}

		for _, value := range values {
			spec.Filters = append(spec.Filters, Filter{Field: field, Op: op, Value: value})
		}
	}

	return nil
}

// parseFilterKey splits "amount[gte]" into field and SQL operator. A key
// without brackets is an equality filter.
func parseFilterKey(key string) (string, string, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, "=", nil
	}

	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", utils.NewValidationError(key, fmt.Sprintf("Malformed filter parameter '%s'", key))
	}

	field := key[:open]
	opKey := key[open+1 : len(key)-1]

	op, ok := operators[opKey]
	if !ok {
		return "", "", utils.NewValidationError(field, fmt.Sprintf("Unknown comparison operator '%s'", opKey))
	}

	return field, op, nil
}

// applySort parses the comma-separated sort list; a leading '-' marks
// descending order. Absent input falls back to the resource's default
// ordering so pagination stays deterministic.
func applySort(spec *Spec, raw url.Values, res *Resource) error {
	sortParam := strings.TrimSpace(raw.Get(constants.QueryParamSort))
	if sortParam == "" {
		spec.Sort = append(spec.Sort, res.DefaultSort...)
		return nil
	}

	for _, part := range strings.Split(sortParam, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")

		if !res.Sortable[field] {
			return utils.NewValidationError(field, fmt.Sprintf("Cannot sort on field '%s'", field))
		}

		spec.Sort = append(spec.Sort, SortField{Field: field, Desc: desc})
	}

	if len(spec.Sort) == 0 {
		spec.Sort = append(spec.Sort, res.DefaultSort...)
	}

	return nil
}

// applyFields parses the comma-separated projection list. Absent input
// selects the resource's default projection, which already excludes
// internal bookkeeping columns.
func applyFields(spec *Spec, raw url.Values, res *Resource) error {
	fieldsParam := strings.TrimSpace(raw.Get(constants.QueryParamFields))
	if fieldsParam == "" {
		spec.Projection = append(spec.Projection, res.Selectable...)
		return nil
	}

	selectable := res.selectableSet()
	for _, part := range strings.Split(fieldsParam, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !selectable[part] {
			return utils.NewValidationError(part, fmt.Sprintf("Cannot select field '%s'", part))
		}

		spec.Projection = append(spec.Projection, part)
	}

	if len(spec.Projection) == 0 {
		spec.Projection = append(spec.Projection, res.Selectable...)
	}

	return nil
}

// applyPagination parses page and limit. Non-numeric values are a
// validation error; parseable values at or below zero clamp to the
// defaults, and limit is capped.
func applyPagination(spec *Spec, raw url.Values, _ *Resource) error {
	if pageParam := raw.Get(constants.QueryParamPage); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil {
			return utils.NewValidationError(constants.QueryParamPage, fmt.Sprintf("Invalid page number '%s'", pageParam))
		}
		if page > 0 {
			spec.Page = page
		}
	}

	if limitParam := raw.Get(constants.QueryParamLimit); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return utils.NewValidationError(constants.QueryParamLimit, fmt.Sprintf("Invalid limit '%s'", limitParam))
		}
		if limit > 0 {
			spec.Limit = limit
		}
		if spec.Limit > constants.MaxLimit {
			spec.Limit = constants.MaxLimit
		}
	}

	return nil
}

// applySearch records the free-text search term, matched against the
// resource's designated search field and combined with the filters by
// logical AND.
func applySearch(spec *Spec, raw url.Values, res *Resource) error {
	term := strings.TrimSpace(raw.Get(constants.QueryParamSearch))
	if term == "" {
		return nil
	}

	if res.SearchField == "" {
		return utils.NewValidationError(constants.QueryParamSearch, "This resource does not support text search")
	}

	spec.Search = term
	return nil
}
