// Package parambind implements ParamBinder: merging path, query, and
// form parameters into the typed arguments a handler declares, with
// scalar coercion and the project's required/optional/default rules.
package parambind

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/coreway/httpcore/core"
)

// Kind identifies the scalar type a parameter coerces to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindInt64
	KindFloat64
	KindBool
	KindEnum
)

// Spec declares one handler parameter: its source name, target Kind,
// and how a missing value is handled. Optional parameters leave the
// result map key absent rather than erroring; Default supplies a
// fallback raw value used as if it had arrived on the wire.
type Spec struct {
	Name       string
	Kind       Kind
	Required   bool
	Optional   bool
	Default    *string
	EnumValues []string
}

// Binder merges path, query, and (when aggregation fired for a form
// submission) decoded form values into a handler's declared
// parameters, coercing each to its declared Kind.
type Binder struct{}

func New() *Binder { return &Binder{} }

// Bind resolves specs against form, query, and pathParams, in that
// order of precedence (form wins over query, query wins over path;
// path is looked up only when neither form nor query has the name),
// matching the project's body-overrides-query resolution.
func (b *Binder) Bind(specs []Spec, pathParams map[string]string, query url.Values, form url.Values) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(specs))

	for _, s := range specs {
		raw, present := lookup(s.Name, pathParams, query, form)

		if !present {
			switch {
			case s.Default != nil:
				raw, present = *s.Default, true
			case s.Optional:
				continue
			case s.Required:
				return nil, core.New(core.BadRequest, fmt.Sprintf("missing required parameter %q", s.Name))
			default:
				continue
			}
		}

		v, err := coerce(raw, s)
		if err != nil {
			return nil, core.Wrap(core.BadRequest, fmt.Sprintf("parameter %q", s.Name), err)
		}
		result[s.Name] = v
	}

	return result, nil
}

func lookup(name string, pathParams map[string]string, query, form url.Values) (string, bool) {
	if form != nil {
		if vs, ok := form[name]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	if query != nil {
		if vs, ok := query[name]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	if v, ok := pathParams[name]; ok {
		return v, true
	}
	return "", false
}

func coerce(raw string, s Spec) (interface{}, error) {
	switch s.Kind {
	case KindString:
		return raw, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case KindInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case KindFloat64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case KindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return v, nil
	case KindEnum:
		for _, allowed := range s.EnumValues {
			if raw == allowed {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %v", raw, s.EnumValues)
	default:
		return nil, fmt.Errorf("unknown parameter kind %d", s.Kind)
	}
}
