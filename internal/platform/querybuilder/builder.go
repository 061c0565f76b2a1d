package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and bound arguments with sequential
// positional placeholders.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) raw(s string) {
	w.buf.WriteString(s)
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$" + strconv.Itoa(len(w.args)))
}

// rewrite copies expr into the writer, replacing each '?' with the next
// positional placeholder bound to the matching value. With no values the
// fragment passes through untouched.
func (w *sqlWriter) rewrite(expr string, values []any) {
	if len(values) == 0 {
		w.raw(expr)
		return
	}

	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.buf.WriteByte(expr[i])
	}
}

type Condition interface {
	render(w *sqlWriter)
}

type compare struct {
	column string
	op     string
	value  any
}

func (c compare) render(w *sqlWriter) {
	w.raw(c.column + " " + c.op + " ")
	w.bind(c.value)
}

func Eq(column string, value any) Condition {
	return compare{column: column, op: "=", value: value}
}

func Lt(column string, value any) Condition {
	return compare{column: column, op: "<", value: value}
}

func Gte(column string, value any) Condition {
	return compare{column: column, op: ">=", value: value}
}

type membership struct {
	column string
	values []any
}

// In renders a membership test. An empty value set produces a clause that
// matches nothing instead of invalid SQL.
func In(column string, values []any) Condition {
	return membership{column: column, values: values}
}

func (c membership) render(w *sqlWriter) {
	if len(c.values) == 0 {
		w.raw("1=0")
		return
	}

	w.raw(c.column + " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.raw(", ")
		}
		w.bind(v)
	}
	w.raw(")")
}

type nullCheck struct {
	column string
}

func IsNull(column string) Condition {
	return nullCheck{column: column}
}

func (c nullCheck) render(w *sqlWriter) {
	w.raw(c.column + " IS NULL")
}

type fragment struct {
	expr   string
	values []any
}

// Expr injects a raw SQL fragment. '?' markers are rewritten to positional
// placeholders in argument order.
func Expr(expr string, values ...any) Condition {
	return fragment{expr: expr, values: values}
}

func (c fragment) render(w *sqlWriter) {
	w.rewrite(c.expr, c.values)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &sqlWriter{}
	w.raw("SELECT " + strings.Join(b.columns, ", ") + " FROM " + b.table)
	renderWhere(w, b.where)
	if len(b.groupBy) > 0 {
		w.raw(" GROUP BY " + strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		w.raw(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.raw(" LIMIT " + strconv.Itoa(b.limit))
	}

	return w.buf.String(), w.args, nil
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

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends trailing SQL, typically an ON CONFLICT clause or RETURNING.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &sqlWriter{}
	w.raw("INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.raw(", ")
		}
		w.raw("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.raw(", ")
			}
			w.bind(value)
		}
		w.raw(")")
	}

	if b.suffix != "" {
		w.raw(" ")
		w.rewrite(b.suffix, nil)
	}

	return w.buf.String(), w.args, nil
}

type assignment struct {
	column string
	value  any
	expr   string
	values []any
	isExpr bool
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, values ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: expr, values: values, isExpr: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &sqlWriter{}
	w.raw("UPDATE " + b.table + " SET ")

	for i, s := range b.sets {
		if i > 0 {
			w.raw(", ")
		}
		w.raw(s.column + " = ")
		if s.isExpr {
			w.rewrite(s.expr, s.values)
			continue
		}
		w.bind(s.value)
	}

	renderWhere(w, b.where)
	if b.suffix != "" {
		w.raw(" ")
		w.rewrite(b.suffix, nil)
	}

	return w.buf.String(), w.args, nil
}

func renderWhere(w *sqlWriter, conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.raw(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.raw(" AND ")
		}
		c.render(w)
	}
}
