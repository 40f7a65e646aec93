// Package schema normalizes relational schema descriptions into an
// immutable Catalog of table → column lookups.
//
// Two document shapes are accepted, modelled as the sealed Shape union:
//
//	FlatShape:  {"tables": {"employees": ["id", "name", "salary"]}}
//	TypedShape: {"tables": {"employees": {"numeric": ["id", "salary"], "text": ["name"]}}}
//
// A table may also be written as an object carrying its columns and an
// explicit primary key:
//
//	{"tables": {"employees": {"columns": ["emp_no", "name"], "pk": "emp_no"}}}
//
// Documents are decoded through yaml.v3 nodes so JSON and YAML inputs
// share one parser and table/column order is preserved. CUE documents are
// loaded with LoadCUE.
//
// A Catalog is read-only after New returns and is safe for concurrent use.
package schema
