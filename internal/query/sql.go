package query

import (
	"fmt"
	"strings"
)

// Scope binds a query to the requesting principal. For non-admin users the
// compiled SQL always constrains rows to the owner column; this is an
// authorization boundary enforced at compile time, not an optional filter.
type Scope struct {
	UserID int64
	Admin  bool
}

// ToSQL compiles the specification into a SELECT statement with numbered
// placeholders and the matching argument slice. Field and operator strings
// in the Spec have already been checked against the resource allow-lists
// during Build, so only values travel as placeholders.
func (s *Spec) ToSQL(res *Resource, scope Scope) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(s.Projection, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(res.Table)

	where := s.compileWhere(res, scope, &args)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(s.Sort) > 0 {
		sb.WriteString(" ORDER BY ")
		parts := make([]string, 0, len(s.Sort))
		for _, sf := range s.Sort {
			dir := "ASC"
			if sf.Desc {
				dir = "DESC"
			}
			parts = append(parts, fmt.Sprintf("%s %s", sf.Field, dir))
		}
		sb.WriteString(strings.Join(parts, ", "))
	}

	args = append(args, s.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	args = append(args, s.Offset())
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	return sb.String(), args
}

// CountSQL compiles a COUNT(*) statement over the same filters, search
// term and scope, ignoring sort, projection and pagination.
func (s *Spec) CountSQL(res *Resource, scope Scope) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(res.Table)

	where := s.compileWhere(res, scope, &args)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	return sb.String(), args
}

// compileWhere assembles the conjunction of owner scope, field filters and
// the text search clause, appending values to args.
func (s *Spec) compileWhere(res *Resource, scope Scope, args *[]interface{}) string {
	var clauses []string

	if !scope.Admin && res.OwnerColumn != "" {
		*args = append(*args, scope.UserID)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", res.OwnerColumn, len(*args)))
	}

	for _, f := range s.Filters {
		*args = append(*args, f.Value)
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", f.Field, f.Op, len(*args)))
	}

	if s.Search != "" && res.SearchField != "" {
		*args = append(*args, "%"+s.Search+"%")
		clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", res.SearchField, len(*args)))
	}

	return strings.Join(clauses, " AND ")
}
