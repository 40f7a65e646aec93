package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/nlsql/internal/errs"
)

// LoadCUE compiles a CUE schema document and builds its shape.
//
// The document uses the same layout as the JSON form:
//
//	tables: {
//	    employees: ["id", "name", "salary"]
//	    departments: {numeric: ["id"], text: ["dept_name"]}
//	}
//
// Field order is preserved.
func LoadCUE(src []byte, filename string) (Shape, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, errs.New(errs.CodeSchemaInvalid, "failed to compile CUE schema: %s", formatCUEError(err))
	}

	tablesVal := v.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, errs.New(errs.CodeSchemaInvalid, "schema document has no table section")
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, errs.New(errs.CodeSchemaInvalid, "tables must be a struct: %s", formatCUEError(err))
	}

	var tables []rawTable
	for iter.Next() {
		t, err := cueTable(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, errs.New(errs.CodeSchemaInvalid, "schema document has no table section")
	}

	return buildShape(tables), nil
}

func cueTable(name string, v cue.Value) (rawTable, error) {
	t := rawTable{name: name}

	switch v.IncompleteKind() {
	case cue.ListKind:
		cols, err := cueStrings(v)
		if err != nil {
			return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: %v", name, err)
		}
		t.buckets = []Bucket{{Category: CategoryUnknown, Columns: cols}}
		return t, nil

	case cue.StructKind:
		if colsVal := v.LookupPath(cue.ParsePath("columns")); colsVal.Exists() {
			inner, err := cueTable(name, colsVal)
			if err != nil {
				return rawTable{}, err
			}
			if pk, err := v.LookupPath(cue.ParsePath("pk")).String(); err == nil {
				inner.pk = pk
			}
			return inner, nil
		}

		t.typed = true
		iter, err := v.Fields()
		if err != nil {
			return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: %s", name, formatCUEError(err))
		}
		for iter.Next() {
			cols, err := cueStrings(iter.Value())
			if err != nil {
				return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: bucket %q: %v", name, iter.Label(), err)
			}
			t.buckets = append(t.buckets, Bucket{Category: Category(iter.Label()), Columns: cols})
		}
		return t, nil

	default:
		return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: expected a column list or bucket struct", name)
	}
}

func cueStrings(v cue.Value) ([]string, error) {
	list, err := v.List()
	if err != nil {
		return nil, fmt.Errorf("expected a list: %s", formatCUEError(err))
	}

	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, fmt.Errorf("column names must be strings: %s", formatCUEError(err))
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError flattens a CUE error list into one line.
func formatCUEError(err error) string {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err.Error()
	}
	return list[0].Error()
}
