package repositories

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}

// qualify prefixes every column with the table alias.
func qualify(alias string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = alias + "." + f
	}
	return out
}
