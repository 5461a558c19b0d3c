package core

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Conditions are joined
// with AND and use positional placeholders starting at $1.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
	argIndex   int
}

// NewWhereBuilder returns an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n".
func (wb *WhereBuilder) Add(column string, value interface{}) {
	wb.AddOp(column, "=", value)
}

// AddOp appends "column <op> $n". column is used verbatim; quote it first
// when it comes from configuration.
func (wb *WhereBuilder) AddOp(column, op string, value interface{}) {
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s %s $%d", column, op, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddContains appends a case-insensitive substring match. LIKE wildcards in
// value are escaped so they match literally.
func (wb *WhereBuilder) AddContains(column, value string) {
	if value == "" {
		return
	}
	wb.AddOp(column, "ILIKE", "%"+escapeLike(value)+"%")
}

// NextArgIndex returns the placeholder number the next argument will use.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the clause (with a leading " WHERE ") and its arguments.
// Both are empty when no condition was added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
