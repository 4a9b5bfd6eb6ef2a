package route

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternKind identifies which of the five path matching strategies a
// Route's pattern uses.
type PatternKind int

const (
	Exact PatternKind = iota
	Prefix
	Parameterized
	Glob
	Regex
)

func (k PatternKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	case Parameterized:
		return "parameterized"
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

// Pattern is an immutable compiled path pattern.
type Pattern struct {
	kind     PatternKind
	raw      string
	segments []segment
	re       *regexp.Regexp
	names    []string // capture/placeholder names in declaration order
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segCatchAll
)

type segment struct {
	kind segmentKind
	text string // literal text, or placeholder name for segParam/segCatchAll
}

// NewExact builds an exact path pattern. Paths are normalized by
// trimming a single trailing slash, except for the root path.
func NewExact(path string) (*Pattern, error) {
	return &Pattern{kind: Exact, raw: normalizeExact(path)}, nil
}

func normalizeExact(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

// NewPrefix builds a prefix pattern. Prefix routes normalize to end
// with "/"; the empty tail becomes "/".
func NewPrefix(path string) (*Pattern, error) {
	if path == "" {
		path = "/"
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return &Pattern{kind: Prefix, raw: path}, nil
}

// NewParameterized builds a template pattern such as
// "/users/{id}" or "/users/:id" with an optional trailing "/**"
// catch-all. Placeholder names must be unique within the route.
func NewParameterized(tmpl string) (*Pattern, error) {
	segs, names, err := parseTemplate(tmpl)
	if err != nil {
		return nil, err
	}
	return &Pattern{kind: Parameterized, raw: tmpl, segments: segs, names: names}, nil
}

func parseTemplate(tmpl string) ([]segment, []string, error) {
	parts := splitPath(tmpl)
	seen := map[string]bool{}
	var segs []segment
	var names []string
	for i, p := range parts {
		switch {
		case p == "**":
			if i != len(parts)-1 {
				return nil, nil, fmt.Errorf("route: catch-all must be the last segment in %q", tmpl)
			}
			segs = append(segs, segment{kind: segCatchAll, text: "__catchall__"})
		case strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}"):
			name := p[1 : len(p)-1]
			if name == "" {
				return nil, nil, fmt.Errorf("route: empty placeholder name in %q", tmpl)
			}
			if seen[name] {
				return nil, nil, fmt.Errorf("route: duplicate placeholder %q in %q", name, tmpl)
			}
			seen[name] = true
			names = append(names, name)
			segs = append(segs, segment{kind: segParam, text: name})
		case strings.HasPrefix(p, ":"):
			name := p[1:]
			if name == "" {
				return nil, nil, fmt.Errorf("route: empty placeholder name in %q", tmpl)
			}
			if seen[name] {
				return nil, nil, fmt.Errorf("route: duplicate placeholder %q in %q", name, tmpl)
			}
			seen[name] = true
			names = append(names, name)
			segs = append(segs, segment{kind: segParam, text: name})
		default:
			segs = append(segs, segment{kind: segLiteral, text: p})
		}
	}
	return segs, names, nil
}

// NewGlob builds a pattern using shell-style "*" (one segment) and
// "**" (many segments, must trail the pattern).
func NewGlob(pattern string) (*Pattern, error) {
	parts := splitPath(pattern)
	var segs []segment
	for i, p := range parts {
		switch {
		case p == "**":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("route: ** must be the last segment in %q", pattern)
			}
			segs = append(segs, segment{kind: segCatchAll, text: "__catchall__"})
		case p == "*":
			segs = append(segs, segment{kind: segParam, text: fmt.Sprintf("_%d", i)})
		default:
			segs = append(segs, segment{kind: segLiteral, text: p})
		}
	}
	return &Pattern{kind: Glob, raw: pattern, segments: segs}, nil
}

// NewRegex builds a regex pattern. Named capture groups become path
// parameter bindings.
func NewRegex(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("route: invalid regex %q: %w", expr, err)
	}
	var names []string
	for _, n := range re.SubexpNames() {
		if n != "" {
			names = append(names, n)
		}
	}
	return &Pattern{kind: Regex, raw: expr, re: re, names: names}, nil
}

func (p *Pattern) Kind() PatternKind { return p.kind }
func (p *Pattern) Raw() string       { return p.raw }

// splitPath splits a "/"-delimited path into non-empty segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// match attempts to match decodedPath against the pattern, returning
// path parameter bindings on success.
func (p *Pattern) match(decodedPath string) (map[string]string, bool) {
	switch p.kind {
	case Exact:
		return nil, normalizeExact(decodedPath) == p.raw
	case Prefix:
		if strings.HasPrefix(decodedPath, p.raw) {
			return nil, true
		}
		// a path ending in the prefix without the trailing slash
		return nil, decodedPath+"/" == p.raw
	case Parameterized, Glob:
		return matchSegments(p.segments, splitPath(decodedPath))
	case Regex:
		m := p.re.FindStringSubmatch(decodedPath)
		if m == nil {
			return nil, false
		}
		params := map[string]string{}
		for i, n := range p.re.SubexpNames() {
			if n != "" && i < len(m) {
				params[n] = m[i]
			}
		}
		return params, true
	default:
		return nil, false
	}
}

func matchSegments(pattern []segment, path []string) (map[string]string, bool) {
	params := map[string]string{}
	i := 0
	for ; i < len(pattern); i++ {
		seg := pattern[i]
		if seg.kind == segCatchAll {
			params["**"] = strings.Join(path[i:], "/")
			return params, true
		}
		if i >= len(path) {
			return nil, false
		}
		switch seg.kind {
		case segLiteral:
			if path[i] != seg.text {
				return nil, false
			}
		case segParam:
			params[seg.text] = path[i]
		}
	}
	if i != len(path) {
		return nil, false
	}
	return params, true
}

// TrieEligible reports whether the pattern can be registered in the
// RoutingTrie (component B): exact, prefix, parameterized patterns,
// and globs that reduce to a literal prefix followed by a single
// trailing catch-all (no mid-pattern "*").
func (p *Pattern) TrieEligible() bool {
	switch p.kind {
	case Exact, Prefix, Parameterized:
		return true
	case Glob:
		for i, s := range p.segments {
			if s.kind == segParam && i != len(p.segments)-1 {
				// mid-pattern "*" wildcards are not trie-friendly;
				// only a trailing "**" catch-all reduces to a literal prefix.
				return false
			}
			if s.kind == segParam {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TriePath returns the canonical trie registration path: literal
// segments verbatim, ":name" for a parameter segment, "*name" for a
// trailing catch-all. Only valid when TrieEligible() is true.
func (p *Pattern) TriePath() string {
	switch p.kind {
	case Exact:
		return p.raw
	case Prefix:
		// A trailing catch-all child is registered below the literal
		// prefix node so Trie.Search surfaces this leaf for every
		// sub-path, not just the exact prefix path itself.
		return p.raw + "*rest"
	case Parameterized, Glob:
		var b strings.Builder
		for _, s := range p.segments {
			b.WriteByte('/')
			switch s.kind {
			case segLiteral:
				b.WriteString(s.text)
			case segParam:
				b.WriteByte(':')
				b.WriteString(s.text)
			case segCatchAll:
				b.WriteString("*rest")
			}
		}
		if b.Len() == 0 {
			return "/"
		}
		return b.String()
	default:
		return ""
	}
}
