package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coreway/httpcore/route"
)

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ambiguitySignature captures (path_type, paths, methods, consumes,
// produces), deliberately excluding predicates, since predicate
// presence is exactly what distinguishes an ambiguous group member
// from a safely cacheable one.
func ambiguitySignature(r *route.Route) string {
	var b strings.Builder
	b.WriteString(r.Pattern.Kind().String())
	b.WriteByte('|')
	b.WriteString(r.Pattern.Raw())
	b.WriteByte('|')
	b.WriteString(strings.Join(sortedKeys(r.Methods), ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(sortedKeys(r.Consumes), ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(sortedKeys(r.Produces), ","))
	return b.String()
}

func predicateSignature(preds []route.Predicate) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = fmt.Sprintf("%s:%d:%s", p.Name, p.Op, p.Value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// fullSignaturesEqual reports whether a and b are indistinguishable
// at match time, including predicates: such a pair is a true
// duplicate registration.
func fullSignaturesEqual(a, b *route.Route) bool {
	return ambiguitySignature(a) == ambiguitySignature(b) &&
		predicateSignature(a.ParamPredicates) == predicateSignature(b.ParamPredicates) &&
		predicateSignature(a.HeaderPredicates) == predicateSignature(b.HeaderPredicates)
}
