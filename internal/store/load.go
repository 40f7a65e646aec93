package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/schema"
)

// LoadShape reads the schema at path. The extension picks the source:
// .cue is compiled with CUE, .db/.sqlite/.sqlite3 are opened read-only and
// introspected, anything else is decoded as a JSON or YAML document.
func LoadShape(ctx context.Context, path string) (schema.Shape, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("schema database: %w", err)
		}
		st, err := OpenReadOnly(path)
		if err != nil {
			return nil, err
		}
		defer st.Close()

		shape, err := st.Introspect(ctx)
		if err != nil {
			return nil, err
		}
		if len(shape.Tables) == 0 {
			return nil, errs.New(errs.CodeSchemaInvalid, "database %s has no tables", path)
		}
		return shape, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return schema.LoadCUE(data, path)
	}
	return schema.Parse(data)
}

// LoadCatalog is LoadShape followed by schema.New.
func LoadCatalog(ctx context.Context, path string) (*schema.Catalog, error) {
	shape, err := LoadShape(ctx, path)
	if err != nil {
		return nil, err
	}
	return schema.New(shape)
}
