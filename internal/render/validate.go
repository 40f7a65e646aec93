package render

import (
	"github.com/xwb1989/sqlparser"

	"github.com/roach88/nlsql/internal/errs"
)

// Validate checks that sql parses as a single statement. The parser follows
// the MySQL grammar, so FULL JOIN is reported as invalid.
//
// Returns INVALID_SQL with the parser message in Details["parser"].
func Validate(sql string) error {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return errs.New(errs.CodeInvalidSQL, "generated SQL does not parse").
			With("sql", sql).
			With("parser", err.Error())
	}
	if _, ok := stmt.(*sqlparser.Select); !ok {
		return errs.New(errs.CodeInvalidSQL, "generated SQL is not a SELECT statement").
			With("sql", sql)
	}
	return nil
}
