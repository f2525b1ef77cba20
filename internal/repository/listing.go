package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/persistence"
)

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	defaultOrderColumn = "updated_at"
	// NoLimit returns every matching row.
	NoLimit = -1
)

var sortableColumns = map[string]struct{}{
	"id":             {},
	"subject":        {},
	"customer_name":  {},
	"customer_email": {},
	"customer_phone": {},
	"status":         {},
	"created_at":     {},
	"updated_at":     {},
	"department":     {},
}

// searchColumns are matched case-insensitively by the global search.
var searchColumns = []string{"subject", "customer_name", "customer_phone", "customer_email"}

// ListParams captures server-side listing parameters.
type ListParams struct {
	Status   *domain.TicketStatus
	Search   string
	OrderBy  string
	OrderDir SortDirection
	Offset   int
	Limit    int
}

// Page is one page of a listing.
type Page struct {
	Rows          []domain.CrossDepartmentRow
	FilteredCount int64
	TotalCount    int64
}

// ListingAdapter applies filtering, ordering and pagination to a Relation inside
// the database.
type ListingAdapter struct {
	defaultLimit int
	maxLimit     int
}

// NewListingAdapter builds an adapter. Limits <= 0 fall back to 10 and 500.
func NewListingAdapter(defaultLimit, maxLimit int) *ListingAdapter {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &ListingAdapter{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// List runs the total count, the filtered count and the page query against the
// relation's execution store.
func (a *ListingAdapter) List(ctx context.Context, rel Relation, params ListParams) (*Page, error) {
	db := rel.Exec.DB()
	page := &Page{Rows: []domain.CrossDepartmentRow{}}

	totalQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, rel.From())
	if err := db.QueryRow(ctx, totalQuery, rel.Args...).Scan(&page.TotalCount); err != nil {
		return nil, persistence.WrapStoreError(rel.Exec, "count tickets", err)
	}

	where, args := a.whereClause(rel, params)
	if where == "" {
		page.FilteredCount = page.TotalCount
	} else {
		filteredQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, rel.From(), where)
		if err := db.QueryRow(ctx, filteredQuery, args...).Scan(&page.FilteredCount); err != nil {
			return nil, persistence.WrapStoreError(rel.Exec, "count filtered tickets", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `SELECT %s, department FROM %s`, strings.Join(crossStoreColumns, ", "), rel.From())
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderClause(params))

	limit := a.limit(params.Limit)
	if limit != NoLimit {
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, offset)
	fmt.Fprintf(&b, " OFFSET $%d", len(args))

	rows, err := db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, persistence.WrapStoreError(rel.Exec, "list tickets", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row    domain.CrossDepartmentRow
			status string
		)
		if err := rows.Scan(
			&row.ID,
			&row.Subject,
			&row.CustomerName,
			&row.CustomerEmail,
			&row.CustomerPhone,
			&status,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.Department,
		); err != nil {
			return nil, persistence.WrapStoreError(rel.Exec, "list tickets", err)
		}
		row.Status = domain.TicketStatus(status)
		page.Rows = append(page.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence.WrapStoreError(rel.Exec, "list tickets", err)
	}
	return page, nil
}

// whereClause returns the filter predicate and the full argument list, starting
// with the relation's own bindings.
func (a *ListingAdapter) whereClause(rel Relation, params ListParams) (string, []any) {
	args := append([]any(nil), rel.Args...)
	clauses := []string{}

	if params.Status != nil {
		args = append(args, string(*params.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		parts := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			parts[i] = fmt.Sprintf("%s ILIKE %s", col, placeholder)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), args
}

func (a *ListingAdapter) limit(requested int) int {
	switch {
	case requested == NoLimit:
		return NoLimit
	case requested <= 0:
		return a.defaultLimit
	case requested > a.maxLimit:
		return a.maxLimit
	}
	return requested
}

func orderClause(params ListParams) string {
	column := params.OrderBy
	dir := params.OrderDir
	if _, ok := sortableColumns[column]; !ok {
		column = defaultOrderColumn
		dir = SortDesc
	}
	if dir != SortAsc {
		dir = SortDesc
	}
	clause := column + " " + strings.ToUpper(string(dir))
	if column != "department" {
		clause += ", department ASC"
	}
	if column != "id" {
		clause += ", id DESC"
	}
	return clause
}

// escapeLike makes the search term match literally inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
