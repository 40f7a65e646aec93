// Package align maps free-form terms from a question onto fully-qualified
// schema columns.
//
// Similarity is pluggable through Scorer; the default LexicalScorer uses
// difflib ratios and word overlap, and an embedding model can be plugged
// in without touching the decision logic. The decision logic itself
// (synonym bias, confidence floor, fuzzy fallback, ambiguity guard) is
// deterministic and never guesses: an unmappable term is simply absent
// from the result.
package align
