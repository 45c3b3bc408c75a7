package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// From starts a query on a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

type filter struct {
	column string
	expr   string
}

// QueryBuilder builds PostgREST requests.
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []filter
	orders  []string
	limit   int
	single  bool
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	return q.op(column, "eq", value)
}

func (q *QueryBuilder) Neq(column string, value any) *QueryBuilder {
	return q.op(column, "neq", value)
}

func (q *QueryBuilder) Gte(column string, value any) *QueryBuilder {
	return q.op(column, "gte", value)
}

func (q *QueryBuilder) Lte(column string, value any) *QueryBuilder {
	return q.op(column, "lte", value)
}

// Is filters on IS (null, true, false).
func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	return q.op(column, "is", value)
}

func (q *QueryBuilder) In(column string, values ...any) *QueryBuilder {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	q.filters = append(q.filters, filter{column: column, expr: "in.(" + strings.Join(parts, ",") + ")"})
	return q
}

func (q *QueryBuilder) op(column, op string, value any) *QueryBuilder {
	q.filters = append(q.filters, filter{column: column, expr: op + "." + fmt.Sprint(value)})
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Single expects exactly one row; zero rows yields common.ErrNotFound.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

func (q *QueryBuilder) path() string {
	return "/rest/v1/" + q.table
}

func (q *QueryBuilder) filterValues() url.Values {
	v := url.Values{}
	for _, f := range q.filters {
		v.Add(f.column, f.expr)
	}
	return v
}

func (q *QueryBuilder) header(representation bool) http.Header {
	h := http.Header{}
	if q.single {
		h.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if representation {
		h.Set("Prefer", "return=representation")
	} else {
		h.Set("Prefer", "return=minimal")
	}
	return h
}

// Execute runs a SELECT and decodes the rows (or the row, with Single)
// into out.
func (q *QueryBuilder) Execute(ctx context.Context, out any) error {
	params := q.filterValues()
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}

	h := http.Header{}
	if q.single {
		h.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := q.client.send(ctx, request{
		method: http.MethodGet,
		path:   q.path(),
		query:  params,
		header: h,
	})
	if err != nil {
		return fmt.Errorf("select %s: %w", q.table, err)
	}
	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("select %s: decode: %w", q.table, err)
	}
	return nil
}

// Insert posts rows (a struct, map or slice of them). When out is non-nil
// the inserted rows are decoded into it.
func (q *QueryBuilder) Insert(ctx context.Context, rows any, out any) error {
	params := url.Values{}
	if out != nil && q.columns != "" {
		params.Set("select", q.columns)
	}

	resp, err := q.client.send(ctx, request{
		method: http.MethodPost,
		path:   q.path(),
		query:  params,
		body:   rows,
		header: q.header(out != nil),
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", q.table, err)
	}
	if out != nil {
		if err := resp.JSON(out); err != nil {
			return fmt.Errorf("insert %s: decode: %w", q.table, err)
		}
	}
	return nil
}

// Update patches every row matching the filters. An update without filters
// is refused.
func (q *QueryBuilder) Update(ctx context.Context, patch any, out any) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("%w: update %s without filter", common.ErrInvalidInput, q.table)
	}

	resp, err := q.client.send(ctx, request{
		method: http.MethodPatch,
		path:   q.path(),
		query:  q.filterValues(),
		body:   patch,
		header: q.header(out != nil),
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", q.table, err)
	}
	if out != nil {
		if err := resp.JSON(out); err != nil {
			return fmt.Errorf("update %s: decode: %w", q.table, err)
		}
	}
	return nil
}

// Delete removes every row matching the filters. A delete without filters
// is refused.
func (q *QueryBuilder) Delete(ctx context.Context) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("%w: delete %s without filter", common.ErrInvalidInput, q.table)
	}

	if _, err := q.client.send(ctx, request{
		method: http.MethodDelete,
		path:   q.path(),
		query:  q.filterValues(),
		header: q.header(false),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", q.table, err)
	}
	return nil
}
