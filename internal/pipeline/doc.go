// Package pipeline sequences the synthesis stages for one request.
//
// A question is analyzed by intent.Extract, its tables are resolved
// against the schema Catalog and it is routed by shape:
//
//	one table, no aggregation   → RouteProjection
//	one table, aggregation      → RouteAggregation
//	two tables, no aggregation  → RouteJoin
//	two tables, aggregation     → RouteJoinAggregation
//
// Each route builds a queryast.Query which render turns into SQL. In
// ModeDecode the resolved query is additionally replayed through the
// grammar decoder and the decoded token sequence is bound, parsed and
// rendered instead.
//
// Handle is the request boundary: it never panics and never returns an
// error, every failure is reported as Response.Reason.
package pipeline
