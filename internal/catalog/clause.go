package catalog

import (
	"fmt"

	"github.com/mgonc/go-poker-metrics/internal/parser"
)

// Clause is a compiled stat predicate. Compilation happens once at catalog
// load; Eval is pure, total and never allocates.
type Clause interface {
	Eval(ctx parser.Context) bool
}

// clause operators in the order the grammar documents them.
var clauseOps = []string{"all", "any", "not", "eq", "in", "gte", "lte", "gt", "lt", "is_true", "is_false"}

// compileClause turns a decoded YAML node into a Clause. Shapes: a bare
// bool, a bare field name, a bare list (implicit all), or a single-operator
// mapping. Anything else is a load-time error, so evaluation never meets an
// unknown shape.
func compileClause(raw any) (Clause, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("clause is empty")
	case bool:
		return literal(v), nil
	case string:
		if v == "" {
			return nil, fmt.Errorf("clause field name is empty")
		}
		return ref(v), nil
	case []any:
		return compileList("all", v)
	case map[string]any:
		if len(v) != 1 {
			return nil, fmt.Errorf("clause object must hold exactly one operator, has %d", len(v))
		}
		for _, op := range clauseOps {
			arg, ok := v[op]
			if !ok {
				continue
			}
			return compileOp(op, arg)
		}
		for k := range v {
			return nil, fmt.Errorf("unknown clause operator %q", k)
		}
	}
	return nil, fmt.Errorf("unsupported clause shape %T", raw)
}

func compileOp(op string, arg any) (Clause, error) {
	switch op {
	case "all", "any":
		list, ok := arg.([]any)
		if !ok {
			return nil, fmt.Errorf("%s expects a list of clauses", op)
		}
		return compileList(op, list)

	case "not":
		inner, err := compileClause(arg)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return notOf{inner}, nil

	case "eq":
		field, value, err := compilePair(op, arg)
		if err != nil {
			return nil, err
		}
		if err := checkScalar(op, value); err != nil {
			return nil, err
		}
		return equals{field: field, value: value}, nil

	case "in":
		field, value, err := compilePair(op, arg)
		if err != nil {
			return nil, err
		}
		values, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("in expects [field, [values...]]")
		}
		for _, v := range values {
			if err := checkScalar(op, v); err != nil {
				return nil, err
			}
		}
		return inSet{field: field, values: values}, nil

	case "gte", "lte", "gt", "lt":
		field, value, err := compilePair(op, arg)
		if err != nil {
			return nil, err
		}
		bound, ok := numeric(value)
		if !ok {
			return nil, fmt.Errorf("%s bound must be numeric, got %T", op, value)
		}
		return compare{field: field, op: op, bound: bound}, nil

	case "is_true", "is_false":
		field, ok := arg.(string)
		if !ok || field == "" {
			return nil, fmt.Errorf("%s expects a field name", op)
		}
		if op == "is_true" {
			return ref(field), nil
		}
		return isFalse(field), nil
	}
	return nil, fmt.Errorf("unknown clause operator %q", op)
}

func compileList(op string, list []any) (Clause, error) {
	clauses := make([]Clause, 0, len(list))
	for i, item := range list {
		c, err := compileClause(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		clauses = append(clauses, c)
	}
	if op == "any" {
		return anyOf(clauses), nil
	}
	return allOf(clauses), nil
}

func compilePair(op string, arg any) (string, any, error) {
	pair, ok := arg.([]any)
	if !ok || len(pair) != 2 {
		return "", nil, fmt.Errorf("%s expects [field, value]", op)
	}
	field, ok := pair[0].(string)
	if !ok || field == "" {
		return "", nil, fmt.Errorf("%s field must be a name", op)
	}
	return field, pair[1], nil
}

func checkScalar(op string, v any) error {
	switch v.(type) {
	case nil, bool, string, int, int64, float64:
		return nil
	}
	return fmt.Errorf("%s value must be a scalar, got %T", op, v)
}

// ---- AST nodes ----

type literal bool

func (l literal) Eval(parser.Context) bool { return bool(l) }

// ref covers bare field references and is_true. A missing field is false.
type ref string

func (r ref) Eval(ctx parser.Context) bool { return parser.Truthy(ctx[string(r)]) }

// isFalse negates the field's truthiness, except that a genuinely absent
// field stays false. Present-but-null is therefore true while absent is not;
// kept for catalog compatibility.
type isFalse string

func (f isFalse) Eval(ctx parser.Context) bool {
	v, ok := ctx[string(f)]
	if !ok {
		return false
	}
	return !parser.Truthy(v)
}

type allOf []Clause

func (a allOf) Eval(ctx parser.Context) bool {
	for _, c := range a {
		if !c.Eval(ctx) {
			return false
		}
	}
	return true
}

type anyOf []Clause

func (a anyOf) Eval(ctx parser.Context) bool {
	for _, c := range a {
		if c.Eval(ctx) {
			return true
		}
	}
	return false
}

type notOf struct{ inner Clause }

func (n notOf) Eval(ctx parser.Context) bool { return !n.inner.Eval(ctx) }

type equals struct {
	field string
	value any
}

func (e equals) Eval(ctx parser.Context) bool { return looseEq(ctx[e.field], e.value) }

type inSet struct {
	field  string
	values []any
}

func (s inSet) Eval(ctx parser.Context) bool {
	v := ctx[s.field]
	for _, want := range s.values {
		if looseEq(v, want) {
			return true
		}
	}
	return false
}

type compare struct {
	field string
	op    string
	bound float64
}

func (c compare) Eval(ctx parser.Context) bool {
	x, ok := numeric(ctx[c.field])
	if !ok {
		return false
	}
	switch c.op {
	case "gte":
		return x >= c.bound
	case "lte":
		return x <= c.bound
	case "gt":
		return x > c.bound
	default:
		return x < c.bound
	}
}

// ---- value coercion ----

// numeric widens any JSON- or YAML-decoded number. Missing and null come
// back not-ok, which comparison operators read as "does not satisfy".
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case parser.FlexInt:
		return float64(x), true
	}
	return 0, false
}

// looseEq compares scalars the way the catalog means them: numbers by value
// regardless of decoded width, everything else by strict equality.
func looseEq(a, b any) bool {
	if af, ok := numeric(a); ok {
		bf, ok := numeric(b)
		return ok && af == bf
	}
	switch a.(type) {
	case nil, bool, string:
		return a == b
	}
	return false
}
