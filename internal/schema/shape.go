package schema

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nlsql/internal/errs"
)

// Category is the value category of a typed column bucket.
type Category string

const (
	CategoryUnknown Category = ""
	CategoryNumeric Category = "numeric"
	CategoryText    Category = "text"
	CategoryDate    Category = "date"
)

// Shape is a parsed schema document.
//
// This is a sealed interface - only FlatShape and TypedShape implement it.
type Shape interface {
	shape()
}

// ForeignKey is a declared reference from a column to another table.
type ForeignKey struct {
	Column    string `yaml:"column" json:"column"`
	RefTable  string `yaml:"ref_table" json:"ref_table"`
	RefColumn string `yaml:"ref_column" json:"ref_column"`
}

// FlatTable is a table with an ordered, untyped column list.
type FlatTable struct {
	Name        string
	Columns     []string
	PrimaryKey  string
	ForeignKeys []ForeignKey
}

// FlatShape is a schema whose tables list bare column names.
type FlatShape struct {
	Tables []FlatTable
}

func (FlatShape) shape() {}

// Bucket groups the columns of one value category.
type Bucket struct {
	Category Category
	Columns  []string
}

// TypedTable is a table whose columns are bucketed by category.
type TypedTable struct {
	Name        string
	Buckets     []Bucket
	PrimaryKey  string
	ForeignKeys []ForeignKey
}

// TypedShape is a schema whose tables bucket columns by value category.
type TypedShape struct {
	Tables []TypedTable
}

func (TypedShape) shape() {}

// Parse decodes a JSON or YAML schema document.
//
// The document must contain a non-empty "tables" mapping. The shape of the
// first table decides the shape of the document: a list of columns makes a
// FlatShape, a mapping of category buckets makes a TypedShape. Tables of
// the other shape are converted (flat tables join a typed document as a
// single uncategorized bucket; typed tables are flattened in bucket order).
func Parse(data []byte) (Shape, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.New(errs.CodeSchemaInvalid, "failed to decode schema document: %v", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errs.New(errs.CodeSchemaInvalid, "schema document must be a mapping")
	}

	tablesNode := mappingValue(root, "tables")
	if tablesNode == nil || tablesNode.Kind != yaml.MappingNode || len(tablesNode.Content) == 0 {
		return nil, errs.New(errs.CodeSchemaInvalid, "schema document has no table section")
	}

	var tables []rawTable
	for i := 0; i+1 < len(tablesNode.Content); i += 2 {
		name := tablesNode.Content[i].Value
		t, err := parseTable(name, tablesNode.Content[i+1])
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return buildShape(tables), nil
}

// rawTable is the shape-agnostic intermediate form of one table.
type rawTable struct {
	name    string
	typed   bool
	buckets []Bucket
	pk      string
	fks     []ForeignKey
}

func parseTable(name string, node *yaml.Node) (rawTable, error) {
	t := rawTable{name: name}

	switch node.Kind {
	case yaml.SequenceNode:
		t.buckets = []Bucket{{Category: CategoryUnknown, Columns: scalars(node)}}
		return t, nil

	case yaml.MappingNode:
		if cols := mappingValue(node, "columns"); cols != nil {
			// Table object: {columns: [...] | {bucket: [...]}, pk: ..., foreign_keys: [...]}
			inner, err := parseTable(name, cols)
			if err != nil {
				return rawTable{}, err
			}
			inner.pk = scalarValue(mappingValue(node, "pk"))
			if inner.pk == "" {
				inner.pk = scalarValue(mappingValue(node, "primary_key"))
			}
			if fks := mappingValue(node, "foreign_keys"); fks != nil {
				if err := fks.Decode(&inner.fks); err != nil {
					return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: invalid foreign_keys: %v", name, err)
				}
			}
			return inner, nil
		}

		t.typed = true
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := strings.ToLower(node.Content[i].Value)
			val := node.Content[i+1]
			if val.Kind != yaml.SequenceNode {
				return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: bucket %q must be a list", name, key)
			}
			t.buckets = append(t.buckets, Bucket{Category: Category(key), Columns: scalars(val)})
		}
		return t, nil

	default:
		return rawTable{}, errs.New(errs.CodeSchemaInvalid, "table %s: expected a column list or bucket mapping", name)
	}
}

func buildShape(tables []rawTable) Shape {
	if !tables[0].typed {
		var shape FlatShape
		for _, t := range tables {
			var cols []string
			for _, b := range t.buckets {
				cols = append(cols, b.Columns...)
			}
			shape.Tables = append(shape.Tables, FlatTable{
				Name:        t.name,
				Columns:     cols,
				PrimaryKey:  t.pk,
				ForeignKeys: t.fks,
			})
		}
		return shape
	}

	var shape TypedShape
	for _, t := range tables {
		shape.Tables = append(shape.Tables, TypedTable{
			Name:        t.name,
			Buckets:     t.buckets,
			PrimaryKey:  t.pk,
			ForeignKeys: t.fks,
		})
	}
	return shape
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalars(node *yaml.Node) []string {
	var out []string
	for _, c := range node.Content {
		if c.Kind == yaml.ScalarNode && c.Value != "" {
			out = append(out, c.Value)
		}
	}
	return out
}

func scalarValue(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}
