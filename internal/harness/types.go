package harness

// Outcome records how one case was answered.
type Outcome struct {
	Seq       int    `json:"seq"`
	Question  string `json:"question"`
	Mode      string `json:"mode"`
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	SQL       string `json:"sql,omitempty"`
	Route     string `json:"route,omitempty"`
	Code      string `json:"code,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per case, in case order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors holds the failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutcome appends an outcome, numbering it from 1.
func (r *Result) AddOutcome(o Outcome) {
	o.Seq = len(r.Outcomes) + 1
	r.Outcomes = append(r.Outcomes, o)
}
