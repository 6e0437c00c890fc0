// Package query turns a metabolite search form selection into a
// parameterized query over the metabolites collection.
//
// The Cosmos DB SQL text is produced by Query.SQL; backends without SQL
// (MongoDB, gorm) consume Query.Conditions directly. Submitted values are
// never concatenated into query text.
package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Form keys recognized by the builder.
const (
	MinWeight = "Min weight"
	MaxWeight = "Max weight"
)

// Projection is the fixed select list of every search.
const Projection = "SELECT c.id, c.common_name, c.formula, c.average_molecular_weight, c.pubchem_compound_id FROM c"

// FieldAverageWeight is the document field the weight bounds filter on.
const FieldAverageWeight = "average_molecular_weight"

const (
	paramMinWeight = "@minWeight"
	paramMaxWeight = "@maxWeight"
)

// ErrNoFilter is returned when the selection has neither weight bound.
var ErrNoFilter = errors.New("no weight bound selected")

// ValidationError reports a submitted value the builder cannot use.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Selection maps form attribute names to their selected values.
type Selection map[string][]string

// Value returns the first selected value of key. Keys whose values are all
// blank (the [""] sent by an empty form field) are reported as absent.
func (s Selection) Value(key string) (string, bool) {
	for _, v := range s[key] {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// Present returns the attribute names that carry a non-blank value.
func (s Selection) Present() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		if _, ok := s.Value(k); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsEmpty reports whether no attribute carries a value.
func (s Selection) IsEmpty() bool {
	return len(s.Present()) == 0
}

// WeightRange holds the parsed weight bounds; nil means unbounded.
type WeightRange struct {
	Min *float64
	Max *float64
}

// Inverted reports whether both bounds are set and min exceeds max.
func (r WeightRange) Inverted() bool {
	return r.Min != nil && r.Max != nil && *r.Min > *r.Max
}

// ParseWeightRange parses the weight bounds present in the selection.
func ParseWeightRange(sel Selection) (WeightRange, error) {
	var r WeightRange
	var err error
	if r.Min, err = parseBound(sel, MinWeight); err != nil {
		return WeightRange{}, err
	}
	if r.Max, err = parseBound(sel, MaxWeight); err != nil {
		return WeightRange{}, err
	}
	return r, nil
}

func parseBound(sel Selection, key string) (*float64, error) {
	raw, ok := sel.Value(key)
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ValidationError{Field: key, Value: raw, Err: errors.New("not a number")}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ValidationError{Field: key, Value: raw, Err: errors.New("not a finite number")}
	}
	return &v, nil
}

// Op is a comparison applied to a document field.
type Op string

const (
	OpGTE     Op = ">="
	OpLTE     Op = "<="
	OpBetween Op = "BETWEEN"
)

// Param is a named query parameter.
type Param struct {
	Name  string
	Value float64
}

// Condition is one predicate of the WHERE clause. OpBetween carries two
// params (low, high); the other operators carry one.
type Condition struct {
	Field  string
	Op     Op
	Params []Param
}

// Query is a built metabolite search.
type Query struct {
	Conditions []Condition
}

// Build converts the selection into a query. It does not check that the
// minimum is below the maximum; callers validate that first.
func Build(sel Selection) (*Query, error) {
	r, err := ParseWeightRange(sel)
	if err != nil {
		return nil, err
	}

	var cond Condition
	switch {
	case r.Min != nil && r.Max != nil:
		cond = Condition{Field: FieldAverageWeight, Op: OpBetween, Params: []Param{
			{Name: paramMinWeight, Value: *r.Min},
			{Name: paramMaxWeight, Value: *r.Max},
		}}
	case r.Min != nil:
		cond = Condition{Field: FieldAverageWeight, Op: OpGTE, Params: []Param{{Name: paramMinWeight, Value: *r.Min}}}
	case r.Max != nil:
		cond = Condition{Field: FieldAverageWeight, Op: OpLTE, Params: []Param{{Name: paramMaxWeight, Value: *r.Max}}}
	default:
		return nil, ErrNoFilter
	}

	return &Query{Conditions: []Condition{cond}}, nil
}

// Where renders the WHERE clause body in Cosmos DB SQL with @-parameters.
func (q *Query) Where() string {
	return q.render(func(p Param) string { return p.Name })
}

// SQL renders the full Cosmos DB SQL query text.
func (q *Query) SQL() string {
	return Projection + " WHERE " + q.Where()
}

// Parameters returns all parameters in clause order.
func (q *Query) Parameters() []Param {
	var params []Param
	for _, c := range q.Conditions {
		params = append(params, c.Params...)
	}
	return params
}

// String renders the clause with the numeric values inlined. It is meant for
// logs; the values are parsed numbers so the output is never user text.
func (q *Query) String() string {
	return q.render(func(p Param) string { return strconv.FormatFloat(p.Value, 'f', -1, 64) })
}

func (q *Query) render(value func(Param) string) string {
	parts := make([]string, 0, len(q.Conditions))
	for _, c := range q.Conditions {
		field := "c." + c.Field
		switch c.Op {
		case OpBetween:
			parts = append(parts, fmt.Sprintf("%s BETWEEN %s AND %s", field, value(c.Params[0]), value(c.Params[1])))
		default:
			parts = append(parts, fmt.Sprintf("%s %s %s", field, c.Op, value(c.Params[0])))
		}
	}
	return strings.Join(parts, " AND ")
}
