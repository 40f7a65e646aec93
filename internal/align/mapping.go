package align

// Mapping is an ordered term → qualified column map. Entries keep the
// order in which terms were first mapped.
type Mapping struct {
	terms []string
	cols  map[string]string
}

func newMapping() Mapping {
	return Mapping{cols: make(map[string]string)}
}

func (m *Mapping) set(term, col string) {
	if _, ok := m.cols[term]; !ok {
		m.terms = append(m.terms, term)
	}
	m.cols[term] = col
}

// Get returns the column mapped for term.
func (m Mapping) Get(term string) (string, bool) {
	col, ok := m.cols[term]
	return col, ok
}

// Len returns the number of mapped terms.
func (m Mapping) Len() int {
	return len(m.terms)
}

// Terms returns the mapped terms in order.
func (m Mapping) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Columns returns the mapped columns in term order.
func (m Mapping) Columns() []string {
	out := make([]string, len(m.terms))
	for i, t := range m.terms {
		out[i] = m.cols[t]
	}
	return out
}

// First returns the column of the first mapped term.
func (m Mapping) First() (string, bool) {
	if len(m.terms) == 0 {
		return "", false
	}
	return m.cols[m.terms[0]], true
}

// ToMap returns the mapping as a plain map.
func (m Mapping) ToMap() map[string]string {
	out := make(map[string]string, len(m.cols))
	for k, v := range m.cols {
		out[k] = v
	}
	return out
}
