// Package harness runs scenario suites against the synthesis pipeline.
//
// # Scenario Format
//
// A scenario names a schema and a list of questions with what each one
// must produce:
//
//	name: company_basics
//	description: "Projection, aggregation and join routes"
//	schema: company.json        # relative to the scenario file
//	validate: true              # syntax-check every rendered statement
//	cases:
//	  - question: show name from employees where salary > 5000
//	    expect:
//	      sql: SELECT employees.name FROM employees WHERE employees.salary > 5000
//	      route: projection
//	  - question: show everything
//	    expect:
//	      error: UNRESOLVED_TABLE
//	  - question: total salary by dept_id
//	    mode: decode
//	assertions:
//	  - type: modes_agree
//	    question: total salary by dept_id
//	  - type: route_count
//	    route: aggregation
//	    count: 1
//	  - type: history_count
//	    success: false
//	    count: 1
//
// A schema can also be given inline under inline_schema, in the same layout
// as a schema document's tables section.
//
// # Assertion Types
//
//   - sql_contains: the SQL produced for a question contains a fragment
//   - route_count: a route was taken exactly N times
//   - error_count: an error code was reported exactly N times
//   - modes_agree: a question asked in both modes produced the same SQL
//   - history_count: the recorded history holds N matching attempts
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory history store and fixed request ids
// (req-1, req-2, ...), so outcomes are stable across runs and can be
// compared against golden files.
package harness
