package route

import (
	"net/http"
	"regexp"
)

// Operator is the comparison a Predicate applies between a declared
// value and the value observed on the request.
type Operator int

const (
	Eq Operator = iota
	Ne
	ExistsOp
	MatchesRegex
)

// Predicate is one param/header dimension constraint.
type Predicate struct {
	Name  string
	Op    Operator
	Value string
	re    *regexp.Regexp
}

// NewPredicate builds a Predicate, compiling Value as a regexp when
// op is MatchesRegex.
func NewPredicate(name string, op Operator, value string) (Predicate, error) {
	p := Predicate{Name: name, Op: op, Value: value}
	if op == MatchesRegex {
		re, err := regexp.Compile(value)
		if err != nil {
			return Predicate{}, err
		}
		p.re = re
	}
	return p, nil
}

func (p Predicate) matchValues(values []string, present bool) bool {
	switch p.Op {
	case ExistsOp:
		return present
	case Eq:
		for _, v := range values {
			if v == p.Value {
				return true
			}
		}
		return false
	case Ne:
		if !present {
			return true
		}
		for _, v := range values {
			if v == p.Value {
				return false
			}
		}
		return true
	case MatchesRegex:
		for _, v := range values {
			if p.re.MatchString(v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// matchHeaders evaluates the predicate against an http.Header set.
func (p Predicate) matchHeaders(h http.Header) bool {
	vs, ok := h[http.CanonicalHeaderKey(p.Name)]
	return p.matchValues(vs, ok)
}

// matchParams evaluates the predicate against decoded query params.
func (p Predicate) matchParams(q map[string][]string) bool {
	vs, ok := q[p.Name]
	return p.matchValues(vs, ok)
}
