// Package intent extracts structured signals from a natural-language
// question.
//
// Extract is a pure, rule-based analysis: lower-casing, stopword removal,
// synonym normalization, keyword tables for aggregations and comparison
// operators, and phrase patterns for outer-join intent. It never fails;
// absent signals keep their zero defaults and schema resolution is left to
// the aligner and the pipeline.
package intent
