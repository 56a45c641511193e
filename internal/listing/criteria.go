package listing

import "strings"

// Op enumerates the filter operators a store may be asked to execute.
type Op int

const (
	OpEquals Op = iota
	OpContains
	OpRange
	OpIn
)

func (o Op) String() string {
	switch o {
	case OpEquals:
		return "equals"
	case OpContains:
		return "contains"
	case OpRange:
		return "range"
	case OpIn:
		return "in"
	default:
		return "unknown"
	}
}

// Range bounds a numeric field; a nil side is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// Condition is a single typed filter clause. Exactly the fields matching
// Op are meaningful; constructors keep the pairing consistent.
type Condition struct {
	Field  string
	Op     Op
	Text   string
	Bounds Range
	Values []string
}

// Predicate is a node of the filter tree handed to the store.
// A zero Predicate matches all rows.
type Predicate struct {
	Cond *Condition
	All  []Predicate
	Any  []Predicate
}

func (p Predicate) IsEmpty() bool {
	return p.Cond == nil && len(p.All) == 0 && len(p.Any) == 0
}

// Criteria collects named filter clauses in insertion order.
// Clauses combine with AND; a Search clause fans out OR across its fields.
type Criteria struct {
	preds []Predicate
}

// Equals adds an exact-match clause; blank values are dropped.
func (c *Criteria) Equals(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.preds = append(c.preds, Predicate{Cond: &Condition{Field: field, Op: OpEquals, Text: value}})
}

// Contains adds a case-insensitive substring clause; blank values are dropped.
func (c *Criteria) Contains(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.preds = append(c.preds, Predicate{Cond: &Condition{Field: field, Op: OpContains, Text: value}})
}

// Between adds a numeric range clause; both sides nil drops the clause.
func (c *Criteria) Between(field string, min, max *float64) {
	if min == nil && max == nil {
		return
	}
	c.preds = append(c.preds, Predicate{Cond: &Condition{Field: field, Op: OpRange, Bounds: Range{Min: min, Max: max}}})
}

// In adds a membership clause; an empty list drops the clause.
func (c *Criteria) In(field string, values []string) {
	vals := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return
	}
	c.preds = append(c.preds, Predicate{Cond: &Condition{Field: field, Op: OpIn, Values: vals}})
}

// Search adds one clause matching value as a case-insensitive substring
// of any of the given fields.
func (c *Criteria) Search(value string, fields ...string) {
	value = strings.TrimSpace(value)
	if value == "" || len(fields) == 0 {
		return
	}
	any := make([]Predicate, 0, len(fields))
	for _, f := range fields {
		any = append(any, Predicate{Cond: &Condition{Field: f, Op: OpContains, Text: value}})
	}
	c.preds = append(c.preds, Predicate{Any: any})
}

// Predicate folds the collected clauses into one tree.
// No clauses means match-all (zero Predicate).
func (c Criteria) Predicate() Predicate {
	switch len(c.preds) {
	case 0:
		return Predicate{}
	case 1:
		return c.preds[0]
	default:
		return Predicate{All: c.preds}
	}
}

// Sort is a single-field ordering preference.
type Sort struct {
	Field string
	Desc  bool
}

// ResolveSort maps a raw sort key through the resource's whitelist.
// Unknown keys (and blank input) fall back to def rather than failing.
func ResolveSort(rawField, rawDir string, allowed map[string]string, def Sort) Sort {
	field, ok := allowed[strings.TrimSpace(rawField)]
	if !ok {
		return def
	}
	return Sort{Field: field, Desc: strings.EqualFold(strings.TrimSpace(rawDir), "desc")}
}
