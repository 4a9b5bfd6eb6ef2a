// Package pathtrie implements the RoutingTrie: a prefix tree over
// trie-eligible path patterns that narrows a request
// path down to a candidate leaf set before the full dimensional match
// (method/consumes/produces/predicates) runs in the routing package.
package pathtrie

import "github.com/coreway/httpcore/route"

// Leaf pairs a Route with whatever value the owning router associates
// with it (a ServiceConfig for the main router, a DecoratorBinding for
// the decorator router) — the trie itself is agnostic to V.
type Leaf[V any] struct {
	Route *route.Route
	Value V
}

type node[V any] struct {
	children map[byte]*node[V]
	param    *node[V]
	catchAll *node[V]
	leaves   []Leaf[V]
}

func newNode[V any]() *node[V] { return &node[V]{} }

// Trie is a RoutingTrie instance.
type Trie[V any] struct {
	root *node[V]
}

func New[V any]() *Trie[V] {
	return &Trie[V]{root: newNode[V]()}
}

// Insert registers r (and its associated value) under its canonical
// trie path. Callers must only insert routes whose
// Pattern.TrieEligible() is true.
func (t *Trie[V]) Insert(triePath string, r *route.Route, value V) {
	cur := t.root
	i := 0
	for i < len(triePath) {
		c := triePath[i]
		atSegmentStart := i == 0 || triePath[i-1] == '/'
		if atSegmentStart && c == ':' {
			j := i + 1
			for j < len(triePath) && triePath[j] != '/' {
				j++
			}
			if cur.param == nil {
				cur.param = newNode[V]()
			}
			cur = cur.param
			i = j
			continue
		}
		if atSegmentStart && c == '*' {
			j := i + 1
			for j < len(triePath) && triePath[j] != '/' {
				j++
			}
			if cur.catchAll == nil {
				cur.catchAll = newNode[V]()
			}
			cur = cur.catchAll
			i = j
			continue
		}
		if cur.children == nil {
			cur.children = map[byte]*node[V]{}
		}
		nxt, ok := cur.children[c]
		if !ok {
			nxt = newNode[V]()
			cur.children[c] = nxt
		}
		cur = nxt
		i++
	}
	cur.leaves = insertSorted(cur.leaves, Leaf[V]{Route: r, Value: value})
}

func insertSorted[V any](leaves []Leaf[V], l Leaf[V]) []Leaf[V] {
	idx := 0
	for idx < len(leaves) && leaves[idx].Route.Complexity() >= l.Route.Complexity() {
		idx++
	}
	leaves = append(leaves, Leaf[V]{})
	copy(leaves[idx+1:], leaves[idx:])
	leaves[idx] = l
	return leaves
}

// Search descends the trie for path, consuming one segment per
// parameter-child transition and the remainder at a catch-all, and
// returns every leaf encountered at a node where the full path was
// consumed, sorted by complexity descending.
func (t *Trie[V]) Search(path string) []Leaf[V] {
	var out []Leaf[V]
	t.root.search(path, 0, &out)
	return mergeSorted(out)
}

func (n *node[V]) search(path string, i int, out *[]Leaf[V]) {
	if i == len(path) {
		*out = append(*out, n.leaves...)
		// A catch-all (prefix or trailing "**" glob) also matches a
		// zero-length remainder, e.g. "/static/" itself for a
		// "/static/*rest" registration.
		if n.catchAll != nil {
			*out = append(*out, n.catchAll.leaves...)
		}
		return
	}

	c := path[i]
	if n.children != nil {
		if nxt, ok := n.children[c]; ok {
			nxt.search(path, i+1, out)
		}
	}

	atSegmentStart := i == 0 || path[i-1] == '/'
	if !atSegmentStart {
		return
	}

	if n.param != nil {
		j := i
		for j < len(path) && path[j] != '/' {
			j++
		}
		if j > i {
			n.param.search(path, j, out)
		}
	}

	if n.catchAll != nil {
		*out = append(*out, n.catchAll.leaves...)
	}
}

// mergeSorted re-sorts the aggregate result set by complexity
// descending: individual node leaf lists are already sorted, but
// results from different branches (literal vs. param vs. catch-all)
// are concatenated in traversal order and need a final merge.
func mergeSorted[V any](leaves []Leaf[V]) []Leaf[V] {
	for i := 1; i < len(leaves); i++ {
		v := leaves[i]
		j := i - 1
		for j >= 0 && leaves[j].Route.Complexity() < v.Route.Complexity() {
			leaves[j+1] = leaves[j]
			j--
		}
		leaves[j+1] = v
	}
	return leaves
}
