package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/nlsql/internal/schema"
)

// Introspect reads the user tables of the database and returns them as a
// typed schema. Tables appear in creation order, columns in declaration
// order. Declared column types map to categories by SQLite type affinity.
func (s *Store) Introspect(ctx context.Context) (schema.TypedShape, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return schema.TypedShape{}, err
	}

	var shape schema.TypedShape
	for _, name := range names {
		t, err := s.introspectTable(ctx, name)
		if err != nil {
			return schema.TypedShape{}, err
		}
		shape.Tables = append(shape.Tables, t)
	}
	return shape, nil
}

func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

func (s *Store) introspectTable(ctx context.Context, name string) (schema.TypedTable, error) {
	t := schema.TypedTable{Name: name}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid ASC
	`, name)
	if err != nil {
		return t, fmt.Errorf("table info %s: %w", name, err)
	}
	defer rows.Close()

	buckets := make(map[schema.Category]int)
	for rows.Next() {
		var col, declType string
		var pk int
		if err := rows.Scan(&col, &declType, &pk); err != nil {
			return t, fmt.Errorf("scan column of %s: %w", name, err)
		}
		if pk == 1 {
			t.PrimaryKey = col
		}

		cat := CategoryOf(declType)
		i, ok := buckets[cat]
		if !ok {
			i = len(t.Buckets)
			buckets[cat] = i
			t.Buckets = append(t.Buckets, schema.Bucket{Category: cat})
		}
		t.Buckets[i].Columns = append(t.Buckets[i].Columns, col)
	}
	if err := rows.Err(); err != nil {
		return t, fmt.Errorf("iterate columns of %s: %w", name, err)
	}

	fks, err := s.foreignKeys(ctx, name)
	if err != nil {
		return t, err
	}
	t.ForeignKeys = fks
	return t, nil
}

func (s *Store) foreignKeys(ctx context.Context, name string) ([]schema.ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id ASC, seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("foreign keys %s: %w", name, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		var to *string
		if err := rows.Scan(&fk.RefTable, &fk.Column, &to); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", name, err)
		}
		// A NULL target column references the parent's primary key.
		if to != nil {
			fk.RefColumn = *to
		} else {
			fk.RefColumn = "id"
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys of %s: %w", name, err)
	}
	return fks, nil
}

// CategoryOf maps a declared SQLite column type to a value category using
// the affinity rules of the SQLite documentation (section 3.1).
func CategoryOf(declType string) schema.Category {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "DATE") || strings.Contains(t, "TIME"):
		return schema.CategoryDate
	case strings.Contains(t, "INT"):
		return schema.CategoryNumeric
	case strings.Contains(t, "CHAR") || strings.Contains(t, "CLOB") || strings.Contains(t, "TEXT"):
		return schema.CategoryText
	case strings.Contains(t, "REAL") || strings.Contains(t, "FLOA") || strings.Contains(t, "DOUB"):
		return schema.CategoryNumeric
	case strings.Contains(t, "NUM") || strings.Contains(t, "DEC") || strings.Contains(t, "BOOL"):
		return schema.CategoryNumeric
	default:
		return schema.CategoryText
	}
}
