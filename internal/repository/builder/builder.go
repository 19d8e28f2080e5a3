package builder

import (
	"fmt"
	"strings"
)

// connector joins a condition to the one before it.
type connector string

const (
	connAnd connector = " AND "
	connOr  connector = " OR "
)

// condition is one WHERE term. group is set for parenthesized sub-builders.
type condition struct {
	conn  connector
	sql   string
	args  []interface{}
	group *SQLBuilder
}

// SQLBuilder helps construct SQL queries dynamically.
// Conditions are rendered in the order they were added: Where and WhereRaw
// attach with AND, Or attaches with OR. Placeholders "?" become $1, $2, ...
// and args are returned in placeholder order.
type SQLBuilder struct {
	table      string
	columns    []string
	values     []interface{}
	setArgs    []interface{}
	conds      []condition
	joins      []string
	orderBy    []string
	returning  []string
	limit      int
	offset     int
	updateCols []string
	distinct   bool
	isInsert   bool
	isUpdate   bool
	isDelete   bool
	isSelect   bool
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.isSelect = true
	b.columns = cols
	return b
}

// Distinct makes a SELECT return distinct rows.
func (b *SQLBuilder) Distinct() *SQLBuilder {
	b.distinct = true
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.isUpdate = true
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.isDelete = true
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set specifies the columns and values for update.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.updateCols = append(b.updateCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Returning adds a RETURNING clause to INSERT, UPDATE or DELETE.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// Where adds a condition joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.conds = append(b.conds, condition{conn: connAnd, sql: cond, args: args})
	return b
}

// Or adds a condition joined with OR.
func (b *SQLBuilder) Or(cond string, args ...interface{}) *SQLBuilder {
	b.conds = append(b.conds, condition{conn: connOr, sql: cond, args: args})
	return b
}

// WhereRaw adds a raw SQL condition joined with AND.
func (b *SQLBuilder) WhereRaw(sql string, args ...interface{}) *SQLBuilder {
	return b.Where(sql, args...)
}

// WhereGroup adds a parenthesized group of conditions joined with AND.
// The provided function receives a new SQLBuilder for building the grouped conditions.
// An empty group adds nothing.
func (b *SQLBuilder) WhereGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	g := fn(NewSQLBuilder())
	if g != nil && len(g.conds) > 0 {
		b.conds = append(b.conds, condition{conn: connAnd, group: g})
	}
	return b
}

// OrGroup adds a parenthesized group of conditions joined with OR.
func (b *SQLBuilder) OrGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	g := fn(NewSQLBuilder())
	if g != nil && len(g.conds) > 0 {
		b.conds = append(b.conds, condition{conn: connOr, group: g})
	}
	return b
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// HasConditions reports whether any WHERE condition was added.
func (b *SQLBuilder) HasConditions() bool {
	return len(b.conds) > 0
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if the number of placeholders doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	sql, args := b.Build()

	placeholderCount := 0
	for i := 1; ; i++ {
		if !containsPlaceholder(sql, i) {
			break
		}
		placeholderCount++
	}

	if placeholderCount != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", placeholderCount, len(args))
	}

	return sql, args, nil
}

// containsPlaceholder looks for $n not followed by another digit.
func containsPlaceholder(sql string, n int) bool {
	p := fmt.Sprintf("$%d", n)
	for idx := 0; ; {
		i := strings.Index(sql[idx:], p)
		if i < 0 {
			return false
		}
		end := idx + i + len(p)
		if end >= len(sql) || sql[end] < '0' || sql[end] > '9' {
			return true
		}
		idx = end
	}
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	argIndex := 1

	switch {
	case b.isSelect:
		sb.WriteString("SELECT ")
		if b.distinct {
			sb.WriteString("DISTINCT ")
		}
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	case b.isInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			argIndex++
		}
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
		args = append(args, b.values...)
		b.writeReturning(&sb)
		return sb.String(), args
	case b.isUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		setClauses := make([]string, len(b.updateCols))
		for i, col := range b.updateCols {
			setClauses[i] = fmt.Sprintf("%s = $%d", col, argIndex)
			argIndex++
		}
		sb.WriteString(strings.Join(setClauses, ", "))
		args = append(args, b.setArgs...)
	case b.isDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		where, whereArgs := renderConditions(b.conds, &argIndex)
		sb.WriteString(where)
		args = append(args, whereArgs...)
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	b.writeReturning(&sb)
	return sb.String(), args
}

func (b *SQLBuilder) writeReturning(sb *strings.Builder) {
	if len(b.returning) > 0 && !b.isSelect {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}
}

func renderConditions(conds []condition, argIndex *int) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	for i, c := range conds {
		if i > 0 {
			sb.WriteString(string(c.conn))
		}
		if c.group != nil {
			inner, innerArgs := renderConditions(c.group.conds, argIndex)
			sb.WriteString("(")
			sb.WriteString(inner)
			sb.WriteString(")")
			args = append(args, innerArgs...)
			continue
		}
		sb.WriteString(numberPlaceholders(c.sql, argIndex))
		args = append(args, c.args...)
	}
	return sb.String(), args
}

func numberPlaceholders(sql string, argIndex *int) string {
	parts := strings.Split(sql, "?")
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			sb.WriteString(fmt.Sprintf("$%d", *argIndex))
			*argIndex++
		}
	}
	return sb.String()
}
