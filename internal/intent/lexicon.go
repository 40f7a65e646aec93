package intent

import (
	"regexp"
)

// aggKeywords maps aggregation kinds to their trigger keywords.
// Detection order follows the slice order.
var aggKeywords = []struct {
	agg      string
	keywords []string
}{
	{"avg", []string{"average", "mean"}},
	{"sum", []string{"sum", "total"}},
	{"count", []string{"count", "number of", "how many"}},
	{"max", []string{"maximum", "highest", "max"}},
	{"min", []string{"minimum", "lowest", "min"}},
}

// textOps maps comparison operators to their phrase forms.
// The first operator with a matching phrase wins.
var textOps = []struct {
	op      string
	phrases []string
}{
	{"!=", []string{"not equal to", "is not"}},
	{">=", []string{"greater than or equal to", "at least"}},
	{"<=", []string{"less than or equal to", "at most"}},
	{">", []string{"greater than", "more than", "above"}},
	{"<", []string{"less than", "below"}},
	{"=", []string{"equals", "equal to", "is"}},
}

// symbolOps are checked in order; a symbol present in the text overrides
// any phrase match.
var symbolOps = []string{"!=", ">=", "<=", ">", "<", "="}

// compoundOps are rewritten to symbols before and/or splitting so their
// embedded "or" is not taken as a connector.
var compoundOps = []struct {
	phrase string
	symbol string
}{
	{"greater than or equal to", ">="},
	{"less than or equal to", "<="},
}

var stopwords = map[string]struct{}{
	"show": {}, "get": {}, "find": {}, "list": {}, "of": {}, "from": {},
	"where": {}, "in": {}, "on": {}, "and": {}, "or": {}, "the": {},
	"is": {}, "with": {}, "by": {}, "having": {}, "for": {},
}

// synonyms normalizes domain terms to canonical column names. Two-word
// keys are matched against adjacent tokens.
var synonyms = map[string]string{
	"department name": "dept_name",
	"employee name":   "emp_name",
	"employee id":     "emp_id",
	"product name":    "product_name",
	"product id":      "product_id",
	"salary":          "salary",
	"age":             "age",
}

// preservePhrases select a LEFT join when no preserve pattern matched.
var preservePhrases = []string{
	"with or without",
	"even if",
	"including",
	"including those",
	"all",
	"their",
}

// rightPrefixes select a RIGHT join when the question starts with them.
var rightPrefixes = []string{
	"orders and their",
	"all orders",
}

var (
	wordPattern   = regexp.MustCompile(`[a-zA-Z_]+`)
	numberPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	intPattern    = regexp.MustCompile(`\b\d+\b`)
	quotedPattern = regexp.MustCompile(`'(.*?)'|"(.*?)"`)
	connectorRE   = regexp.MustCompile(`\b(and|or)\b`)
)

// aggWords is the set of single and multi-word aggregation keywords.
var aggWords = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, entry := range aggKeywords {
		for _, kw := range entry.keywords {
			out[kw] = struct{}{}
		}
	}
	return out
}()

// phrasePatterns caches a word-boundary pattern per phrase.
var phrasePatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	add := func(p string) {
		if _, ok := out[p]; !ok {
			out[p] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)
		}
	}
	for _, entry := range textOps {
		for _, p := range entry.phrases {
			add(p)
		}
	}
	for _, p := range preservePhrases {
		add(p)
	}
	for _, p := range []string{"including", "without", "with no"} {
		add(p)
	}
	return out
}()

// hasPhrase reports whether phrase occurs in text on word boundaries.
func hasPhrase(text, phrase string) bool {
	if re, ok := phrasePatterns[phrase]; ok {
		return re.MatchString(text)
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`).MatchString(text)
}

func isStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}
