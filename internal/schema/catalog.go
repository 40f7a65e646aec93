package schema

import (
	"strings"

	"github.com/roach88/nlsql/internal/errs"
)

// table is the normalized, immutable form of one schema table.
type table struct {
	name    string
	columns []string
	index   map[string]struct{}
	types   map[string]Category
	pk      string
	fks     []ForeignKey
}

// Catalog provides read-only table → column lookups over a schema.
type Catalog struct {
	tables []*table
	byName map[string]*table
	typed  bool
}

// New builds a Catalog from a parsed shape.
//
// Duplicate column names within a table are collapsed to their first
// occurrence. Returns a SCHEMA_INVALID error when the shape has no tables.
func New(shape Shape) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*table)}

	switch s := shape.(type) {
	case FlatShape:
		for _, ft := range s.Tables {
			t := newTable(ft.Name, ft.PrimaryKey, ft.ForeignKeys)
			for _, col := range ft.Columns {
				t.add(col, CategoryUnknown)
			}
			c.addTable(t)
		}
	case TypedShape:
		c.typed = true
		for _, tt := range s.Tables {
			t := newTable(tt.Name, tt.PrimaryKey, tt.ForeignKeys)
			for _, b := range tt.Buckets {
				for _, col := range b.Columns {
					t.add(col, b.Category)
				}
			}
			c.addTable(t)
		}
	case nil:
		return nil, errs.New(errs.CodeSchemaInvalid, "schema has no table section")
	default:
		return nil, errs.New(errs.CodeSchemaInvalid, "unknown schema shape %T", shape)
	}

	if len(c.tables) == 0 {
		return nil, errs.New(errs.CodeSchemaInvalid, "schema has no table section")
	}
	return c, nil
}

// Load parses a JSON/YAML schema document and builds its Catalog.
func Load(data []byte) (*Catalog, error) {
	shape, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(shape)
}

func newTable(name, pk string, fks []ForeignKey) *table {
	return &table{
		name:  name,
		index: make(map[string]struct{}),
		types: make(map[string]Category),
		pk:    pk,
		fks:   fks,
	}
}

func (t *table) add(col string, cat Category) {
	if _, dup := t.index[col]; dup {
		return
	}
	t.index[col] = struct{}{}
	t.types[col] = cat
	t.columns = append(t.columns, col)
}

func (c *Catalog) addTable(t *table) {
	if _, dup := c.byName[t.name]; dup {
		return
	}
	c.byName[t.name] = t
	c.tables = append(c.tables, t)
}

// Typed reports whether the catalog was built from a typed schema.
func (c *Catalog) Typed() bool {
	return c.typed
}

// Tables returns table names in document order.
func (c *Catalog) Tables() []string {
	out := make([]string, len(c.tables))
	for i, t := range c.tables {
		out[i] = t.name
	}
	return out
}

// HasTable reports whether name is a schema table.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Columns returns the columns of table in document order.
// Unknown tables yield nil.
func (c *Catalog) Columns(tableName string) []string {
	t, ok := c.byName[tableName]
	if !ok {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// AllColumns returns every fully-qualified column (table.column).
func (c *Catalog) AllColumns() []string {
	var out []string
	for _, t := range c.tables {
		for _, col := range t.columns {
			out = append(out, Qualify(t.name, col))
		}
	}
	return out
}

// ColumnExists reports whether table has column col.
func (c *Catalog) ColumnExists(tableName, col string) bool {
	t, ok := c.byName[tableName]
	if !ok {
		return false
	}
	_, ok = t.index[col]
	return ok
}

// ColumnType returns the category of a column. Flat schemas and unknown
// columns yield CategoryUnknown.
func (c *Catalog) ColumnType(tableName, col string) Category {
	t, ok := c.byName[tableName]
	if !ok {
		return CategoryUnknown
	}
	return t.types[col]
}

// IsNumeric reports whether a typed column is in the numeric bucket.
func (c *Catalog) IsNumeric(tableName, col string) bool {
	return c.ColumnType(tableName, col) == CategoryNumeric
}

// GroupableColumns returns the columns suitable for GROUP BY: text and
// date columns of a typed schema, every column of a flat one.
func (c *Catalog) GroupableColumns(tableName string) []string {
	t, ok := c.byName[tableName]
	if !ok {
		return nil
	}
	if !c.typed {
		return c.Columns(tableName)
	}

	var out []string
	for _, cat := range []Category{CategoryText, CategoryDate} {
		for _, col := range t.columns {
			if t.types[col] == cat {
				out = append(out, col)
			}
		}
	}
	return out
}

// ResolveColumn qualifies col against a single table.
func (c *Catalog) ResolveColumn(tableName, col string) (string, bool) {
	if !c.ColumnExists(tableName, col) {
		return "", false
	}
	return Qualify(tableName, col), true
}

// ResolveGlobal qualifies col against tables (every table when nil).
// Returns false when zero or more than one table holds the column: an
// ambiguous name is never guessed.
func (c *Catalog) ResolveGlobal(col string, tables []string) (string, bool) {
	if tables == nil {
		tables = c.Tables()
	}

	var match string
	count := 0
	for _, name := range tables {
		if c.ColumnExists(name, col) {
			match = Qualify(name, col)
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return match, true
}

// TablesWithColumn returns, in document order, every table holding col.
func (c *Catalog) TablesWithColumn(col string) []string {
	var out []string
	for _, t := range c.tables {
		if _, ok := t.index[col]; ok {
			out = append(out, t.name)
		}
	}
	return out
}

// ValidateJoin reports whether both sides of left = right are qualified
// columns that exist.
func (c *Catalog) ValidateJoin(left, right string) bool {
	lt, lc, ok := Split(left)
	if !ok {
		return false
	}
	rt, rc, ok := Split(right)
	if !ok {
		return false
	}
	return c.ColumnExists(lt, lc) && c.ColumnExists(rt, rc)
}

// PrimaryKey returns the table's primary key: the declared key, else "id"
// when present, else the first column. Unknown tables yield "".
func (c *Catalog) PrimaryKey(tableName string) string {
	t, ok := c.byName[tableName]
	if !ok {
		return ""
	}
	if t.pk != "" {
		return t.pk
	}
	if _, ok := t.index["id"]; ok {
		return "id"
	}
	if len(t.columns) > 0 {
		return t.columns[0]
	}
	return ""
}

// ForeignKeys returns the declared foreign keys of table.
func (c *Catalog) ForeignKeys(tableName string) []ForeignKey {
	t, ok := c.byName[tableName]
	if !ok {
		return nil
	}
	out := make([]ForeignKey, len(t.fks))
	copy(out, t.fks)
	return out
}

// Qualify returns table.column.
func Qualify(tableName, col string) string {
	return tableName + "." + col
}

// Split separates a qualified column into table and column.
func Split(qualified string) (tableName, col string, ok bool) {
	tableName, col, ok = strings.Cut(qualified, ".")
	if !ok || tableName == "" || col == "" || strings.Contains(col, ".") {
		return "", "", false
	}
	return tableName, col, true
}

// Bare strips the table qualifier from a column, if any.
func Bare(col string) string {
	if i := strings.LastIndexByte(col, '.'); i >= 0 {
		return col[i+1:]
	}
	return col
}
