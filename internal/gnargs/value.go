// Package gnargs models generator arguments as a closed tree of values and
// renders them in the generator's flat "key = value" syntax.
package gnargs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindBool
	KindList
	KindMap
)

// Value is a string, integer, boolean, list or map. The zero Value is
// invalid and is never produced by the constructors.
type Value struct {
	kind Kind
	s    string
	i    int64
	b    bool
	list []Value
	m    Map
}

// Map is a set of named values; nested maps flatten into parent_key names.
type Map map[string]Value

func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

// Strings is a list of string values.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Value{kind: KindList, list: items}
}

// List builds a list. Maps cannot be flattened inside a list, so passing one
// is a programming error.
func List(items ...Value) Value {
	for _, it := range items {
		if it.kind == KindMap || it.kind == 0 {
			panic("gnargs: lists hold only scalars and lists")
		}
	}
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

func Nested(m Map) Value {
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind { return v.kind }

// FromAny converts decoded YAML or JSON data into a Value, rejecting any
// shape the generator cannot express.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("integer %d out of range", t)
		}
		return Int(int64(t)), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return Value{}, fmt.Errorf("non-integer number %v", t)
		}
		// float64(math.MaxInt64) rounds up to 2^63.
		if t >= math.MaxInt64 || t < math.MinInt64 {
			return Value{}, fmt.Errorf("integer %v out of range", t)
		}
		return Int(int64(t)), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			if v.kind == KindMap {
				return Value{}, fmt.Errorf("[%d]: mapping inside a list", i)
			}
			items = append(items, v)
		}
		return Value{kind: KindList, list: items}, nil
	case []string:
		return Strings(t...), nil
	case map[string]any:
		m, err := MapFromAny(t)
		if err != nil {
			return Value{}, err
		}
		return Nested(m), nil
	case nil:
		return Value{}, fmt.Errorf("null value")
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", x)
	}
}

func MapFromAny(in map[string]any) (Map, error) {
	m := make(Map, len(in))
	for k, raw := range in {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		m[k] = v
	}
	return m, nil
}

// Merge returns a copy of dst with src layered on top.
func Merge(dst, src Map) Map {
	out := make(Map, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Serialize renders m as space separated "key = value" pairs, keys sorted,
// nested maps flattened into parent_key names. When two entries flatten to
// the same name the shallower one wins, so an explicit zlib_libs beats
// zlib: {libs: ...}. Equal depths fall back to the smaller source path.
func Serialize(m Map) string {
	flat := map[string]flatEntry{}
	flatten(nil, m, flat)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" = "+render(flat[k].v))
	}
	return strings.Join(parts, " ")
}

type flatEntry struct {
	path []string
	v    Value
}

func (e flatEntry) beats(o flatEntry) bool {
	if len(e.path) != len(o.path) {
		return len(e.path) < len(o.path)
	}
	return strings.Join(e.path, "\x00") < strings.Join(o.path, "\x00")
}

func flatten(path []string, m Map, out map[string]flatEntry) {
	for k, v := range m {
		p := append(append([]string(nil), path...), k)
		if v.kind == KindMap {
			flatten(p, v.m, out)
			continue
		}
		e := flatEntry{path: p, v: v}
		key := strings.Join(p, "_")
		if old, ok := out[key]; ok && !e.beats(old) {
			continue
		}
		out[key] = e
	}
}

func render(v Value) string {
	switch v.kind {
	case KindString:
		return quote(v.s)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		items := make([]string, len(v.list))
		for i, it := range v.list {
			items[i] = render(it)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	panic(fmt.Sprintf("gnargs: cannot render value of kind %d", v.kind))
}

// quote escapes the characters that are special inside generator strings.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\', '$':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Identifier turns a dependency name into a valid argument name.
func Identifier(name string) string {
	var b strings.Builder
	for i, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		case r == '+':
			b.WriteByte('x')
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
