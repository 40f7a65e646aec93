package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/nlsql/internal/errs"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"SELECT employees.name, employees.salary FROM employees WHERE employees.salary > 5000",
		"SELECT dept_id, SUM(salary) FROM employees GROUP BY employees.dept_id",
		"SELECT employees.name FROM employees LEFT JOIN departments ON employees.dept_id = departments.id AND departments.dept_name = 'sales'",
		"SELECT a.x FROM a WHERE ((a.x > 1 AND a.y = 'b') OR a.z < 2.5) ORDER BY a.x DESC LIMIT 10 OFFSET 5",
	}
	for _, sql := range valid {
		assert.NoError(t, Validate(sql), sql)
	}

	invalid := []string{
		"SELECT FROM",
		"SELECT a FROM t WHERE",
		"DELETE FROM t",
	}
	for _, sql := range invalid {
		err := Validate(sql)
		assert.Error(t, err, sql)
		assert.Equal(t, errs.CodeInvalidSQL, errs.CodeOf(err), sql)
	}
}
