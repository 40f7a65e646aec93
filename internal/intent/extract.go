package intent

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/nlsql/internal/queryast"
)

// Normalize returns the canonical form of a question: NFC, lower-case,
// single-spaced.
func Normalize(text string) string {
	s := norm.NFC.String(text)
	// A Caser is stateful; one per call keeps Normalize safe for concurrent use.
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Extract analyzes a question. It never fails: a missing signal is left at
// its default (empty list, null literal, INNER join) and resolution
// failures are left to downstream components.
func Extract(text string) Signals {
	q := Normalize(text)

	s := Signals{
		Text:           q,
		Kind:           KindSelect,
		JoinType:       queryast.JoinInner,
		JoinConfidence: Implicit,
		Operator:       "=",
		Value:          queryast.NullLit(),
		HavingLogic:    queryast.And,
	}

	for _, entry := range aggKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				s.Aggregations = append(s.Aggregations, entry.agg)
				break
			}
		}
	}
	if s.HasAggregation() {
		s.Kind = KindAggregation
	}

	s.Numbers = numberPattern.FindAllString(q, -1)
	s.Strings = quotedStrings(q)
	s.Entities = dedupe(Terms(q))
	s.Tables = tableCandidates(s.Entities)
	s.Join = len(s.Tables) >= 2
	if s.Join {
		s.detectJoinType(q)
	}

	clause := RewriteCompoundOps(q)

	if _, after, ok := strings.Cut(clause, " where "); ok {
		s.Where = true
		s.WhereConditions = whereConditions(cutAny(after, " having ", " by "))
	}

	if _, after, ok := strings.Cut(q, " by "); ok {
		s.GroupBy = Terms(cutAny(after, " having "))
	}

	s.Operator = detectOperator(q)
	s.Value = firstLiteral(q)
	if s.HasValue() {
		s.Where = true
	}

	if _, after, ok := strings.Cut(clause, " having "); ok {
		s.Having = true
		s.HavingConditions, s.HavingLogic = havingConditions(after)
	}

	return s
}

// Terms tokenizes text into stopword-filtered, synonym-normalized words.
// Two-word synonyms ("employee name") collapse into one canonical term.
func Terms(text string) []string {
	var words []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if !isStopword(w) {
			words = append(words, w)
		}
	}

	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		if i+1 < len(words) {
			if canon, ok := synonyms[words[i]+" "+words[i+1]]; ok {
				out = append(out, canon)
				i++
				continue
			}
		}
		if canon, ok := synonyms[words[i]]; ok {
			out = append(out, canon)
			continue
		}
		out = append(out, words[i])
	}
	return out
}

// tableCandidates keeps alphabetic, underscore-free tokens that are not
// aggregation keywords, in first-seen order.
func tableCandidates(entities []string) []string {
	var out []string
	for _, e := range entities {
		if strings.Contains(e, "_") {
			continue
		}
		if _, isAgg := aggWords[e]; isAgg {
			continue
		}
		out = append(out, e)
	}
	return dedupe(out)
}

// detectJoinType infers the outer-join shape from phrasing alone.
//
// For each pair (A, B) of candidate tables with A seen first:
//   - "B without A" / "B with no A" preserves B, the joined table: RIGHT
//   - "A without B" / "A with no B" preserves A, the base table: LEFT
//
// The first matching pair wins. Without a pattern match, preserve phrases
// select LEFT and right-preserving prefixes select RIGHT.
func (s *Signals) detectJoinType(q string) {
	if hasPhrase(q, "including") || hasPhrase(q, "without") || hasPhrase(q, "with no") {
		for i, a := range s.Tables {
			for _, b := range s.Tables[i+1:] {
				switch {
				case strings.Contains(q, b+" without "+a) || strings.Contains(q, b+" with no "+a):
					s.JoinType = queryast.JoinRight
					s.JoinConfidence = Explicit
					s.PreserveTable = b
					return
				case strings.Contains(q, a+" without "+b) || strings.Contains(q, a+" with no "+b):
					s.JoinType = queryast.JoinLeft
					s.JoinConfidence = Explicit
					s.PreserveTable = a
					return
				}
			}
		}
	}

	for _, p := range preservePhrases {
		if hasPhrase(q, p) {
			s.JoinType = queryast.JoinLeft
			s.JoinConfidence = Explicit
			return
		}
	}
	for _, p := range rightPrefixes {
		if strings.HasPrefix(q, p) {
			s.JoinType = queryast.JoinRight
			s.JoinConfidence = Explicit
			return
		}
	}
}

// whereConditions splits a WHERE clause on and/or and extracts one
// (term, operator, literal) triple per chunk. Chunks without a term or a
// literal are skipped.
func whereConditions(clause string) []Condition {
	var out []Condition
	for _, part := range connectorRE.Split(clause, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		terms := Terms(part)
		val := firstLiteral(part)
		if len(terms) == 0 || val.IsNull() {
			continue
		}
		out = append(out, Condition{
			Column: terms[0],
			Op:     detectOperator(part),
			Value:  val,
		})
	}
	return out
}

// havingConditions parses the text after "having". The clause list is
// split on " or " when present (logic OR), else on " and " (logic AND).
// Each clause needs an aggregation keyword and an integer literal.
func havingConditions(clause string) ([]HavingCondition, queryast.LogicOp) {
	logic := queryast.And
	var parts []string
	if strings.Contains(clause, " or ") {
		parts = strings.Split(clause, " or ")
		logic = queryast.Or
	} else {
		parts = strings.Split(clause, " and ")
	}

	var out []HavingCondition
	for _, part := range parts {
		agg := detectAggregation(part)
		num := intPattern.FindString(part)
		if agg == "" || num == "" {
			continue
		}
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, HavingCondition{Agg: agg, Op: detectOperator(part), Value: n})
	}
	return out, logic
}

// detectAggregation returns the first aggregation whose keyword occurs in
// text, or "".
func detectAggregation(text string) string {
	for _, entry := range aggKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.agg
			}
		}
	}
	return ""
}

// DetectAggregation is detectAggregation on normalized text.
func DetectAggregation(text string) string {
	return detectAggregation(Normalize(text))
}

// detectOperator resolves the comparison operator of text. Phrases are
// checked first; a comparison symbol anywhere in text overrides them.
func detectOperator(text string) string {
	op := "="
	for _, entry := range textOps {
		matched := false
		for _, p := range entry.phrases {
			if hasPhrase(text, p) {
				matched = true
				break
			}
		}
		if matched {
			op = entry.op
			break
		}
	}

	if strings.Contains(text, "<>") {
		return "!="
	}
	for _, sym := range symbolOps {
		if strings.Contains(text, sym) {
			return sym
		}
	}
	return op
}

// firstLiteral returns the first quoted string, else the first number,
// else null.
func firstLiteral(text string) queryast.Literal {
	if strs := quotedStrings(text); len(strs) > 0 {
		return queryast.StringLit(strs[0])
	}
	if num := numberPattern.FindString(text); num != "" {
		return ParseNumber(num)
	}
	return queryast.NullLit()
}

// ParseNumber converts a numeric token into an int or float literal.
// Non-numeric input yields a string literal.
func ParseNumber(num string) queryast.Literal {
	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		return queryast.IntLit(n)
	}
	if f, err := strconv.ParseFloat(num, 64); err == nil {
		return queryast.FloatLit(f)
	}
	return queryast.StringLit(num)
}

// Literal returns the first literal of a text fragment.
func Literal(text string) queryast.Literal {
	return firstLiteral(Normalize(text))
}

func quotedStrings(text string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	return out
}

// RewriteCompoundOps replaces comparison phrases that embed a connector
// ("greater than or equal to") with their symbols, so that splitting text
// on and/or leaves them intact. text is expected in normalized form.
func RewriteCompoundOps(text string) string {
	for _, c := range compoundOps {
		text = strings.ReplaceAll(text, c.phrase, c.symbol)
	}
	return text
}

// cutAny truncates text at the earliest of the given separators.
func cutAny(text string, seps ...string) string {
	end := len(text)
	for _, sep := range seps {
		if i := strings.Index(text, sep); i >= 0 && i < end {
			end = i
		}
	}
	return text[:end]
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
