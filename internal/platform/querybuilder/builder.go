package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// binder collects positional arguments and hands out postgres placeholders.
type binder struct {
	args []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// Condition is one AND-joined predicate of a WHERE clause.
type Condition interface {
	render(b *binder) string
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) render(b *binder) string {
	return c.column + " = " + b.bind(c.value)
}

type isNullCondition string

func IsNull(column string) Condition {
	return isNullCondition(column)
}

func (c isNullCondition) render(*binder) string {
	return string(c) + " IS NULL"
}

type exprCondition struct {
	expr string
	args []any
}

// Expr is a raw predicate; each '?' is bound to the next arg in order.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) render(b *binder) string {
	return bindQuestionMarks(c.expr, c.args, b)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

func (s *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, columns...)
	return s
}

func (s *SelectBuilder) Limit(limit int) *SelectBuilder {
	s.limit = limit
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(s.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var (
		sb strings.Builder
		b  binder
	)
	sb.WriteString("SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table)
	sb.WriteString(whereClause(s.where, &b))
	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	if s.limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	}
	return sb.String(), b.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append([]string(nil), columns...)
	return i
}

func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.rows = append(i.rows, append([]any(nil), values...))
	return i
}

// Suffix is appended after VALUES, e.g. an ON CONFLICT clause.
func (i *InsertBuilder) Suffix(sql string) *InsertBuilder {
	i.suffix = strings.TrimSpace(sql)
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(i.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(i.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(i.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var b binder
	tuples := make([]string, 0, len(i.rows))
	for idx, row := range i.rows {
		if len(row) != len(i.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", idx, len(row), len(i.columns))
		}
		marks := make([]string, len(row))
		for col, value := range row {
			marks[col] = b.bind(value)
		}
		tuples = append(tuples, "("+strings.Join(marks, ", ")+")")
	}

	query := "INSERT INTO " + i.table + " (" + strings.Join(i.columns, ", ") + ") VALUES " + strings.Join(tuples, ", ")
	if i.suffix != "" {
		query += " " + i.suffix
	}
	return query, b.args, nil
}

// DeleteBuilder refuses to build a DELETE without a WHERE clause.
type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (d *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	d.where = append(d.where, conditions...)
	return d
}

func (d *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(d.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(d.where) == 0 {
		return "", nil, fmt.Errorf("delete without conditions is not allowed")
	}

	var b binder
	return "DELETE FROM " + d.table + whereClause(d.where, &b), b.args, nil
}

func whereClause(conditions []Condition, b *binder) string {
	if len(conditions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		parts = append(parts, c.render(b))
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

func bindQuestionMarks(expr string, args []any, b *binder) string {
	if len(args) == 0 {
		return expr
	}

	var out strings.Builder
	next := 0
	for _, r := range expr {
		if r == '?' && next < len(args) {
			out.WriteString(b.bind(args[next]))
			next++
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
