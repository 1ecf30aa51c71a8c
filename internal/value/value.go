package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMap
)

// Value is an immutable JSON-like value. Maps preserve key order: document
// order when decoded, insertion order when built with MapBuilder.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	seq  []Value
	obj  *object
}

type object struct {
	keys    []string
	entries map[string]Value
}

func Null() Value {
	return Value{kind: KindNull}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, seq: items}
}

// MapBuilder accumulates map entries in insertion order.
type MapBuilder struct {
	obj object
}

func NewMapBuilder() *MapBuilder {
	return &MapBuilder{obj: object{entries: make(map[string]Value)}}
}

// Set appends the key on first use and overwrites on repeats.
func (b *MapBuilder) Set(key string, v Value) *MapBuilder {
	if _, exists := b.obj.entries[key]; !exists {
		b.obj.keys = append(b.obj.keys, key)
	}
	b.obj.entries[key] = v
	return b
}

func (b *MapBuilder) Build() Value {
	obj := b.obj
	return Value{kind: KindMap, obj: &obj}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Items returns the underlying sequence, or nil for non-sequences.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Keys returns map keys in order, or nil for non-maps.
func (v Value) Keys() []string {
	if v.kind != KindMap || v.obj == nil {
		return nil
	}
	return v.obj.keys
}

func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap || v.obj == nil {
		return Value{}, false
	}
	item, ok := v.obj.entries[key]
	return item, ok
}

// Len reports element count for sequences, entry count for maps and rune
// count for strings. Other kinds have no length.
func (v Value) Len() (int, bool) {
	switch v.kind {
	case KindSequence:
		return len(v.seq), true
	case KindMap:
		return len(v.obj.keys), true
	case KindString:
		return len([]rune(v.str)), true
	default:
		return 0, false
	}
}

// TypeName returns the JSON type name used by type predicates and errors.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "array"
	case KindMap:
		return "object"
	default:
		return "unknown"
	}
}

// From converts decoded Go data into a Value. Plain Go maps have no stable
// order, so their keys are sorted; use DecodeJSON to preserve document order.
func From(input any) (Value, error) {
	switch current := input.(type) {
	case nil:
		return Null(), nil
	case Value:
		return current, nil
	case bool:
		return Bool(current), nil
	case string:
		return String(current), nil
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", current, err)
		}
		return Number(parsed), nil
	case int:
		return Number(float64(current)), nil
	case int32:
		return Number(float64(current)), nil
	case int64:
		return Number(float64(current)), nil
	case uint64:
		return Number(float64(current)), nil
	case float32:
		return Number(float64(current)), nil
	case float64:
		return Number(current), nil
	case []any:
		items := make([]Value, 0, len(current))
		for _, item := range current {
			converted, err := From(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, converted)
		}
		return Sequence(items...), nil
	case []Value:
		return Sequence(current...), nil
	case map[string]any:
		keys := make([]string, 0, len(current))
		for key := range current {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		builder := NewMapBuilder()
		for _, key := range keys {
			converted, err := From(current[key])
			if err != nil {
				return Value{}, err
			}
			builder.Set(key, converted)
		}
		return builder.Build(), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", input)
	}
}

// MustFrom is a test and literal helper; it panics on conversion failure.
func MustFrom(input any) Value {
	v, err := From(input)
	if err != nil {
		panic(err)
	}
	return v
}

// Interface converts back to plain Go data. Map order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindSequence:
		items := make([]any, 0, len(v.seq))
		for _, item := range v.seq {
			items = append(items, item.Interface())
		}
		return items
	case KindMap:
		entries := make(map[string]any, len(v.obj.keys))
		for _, key := range v.obj.keys {
			entries[key] = v.obj.entries[key].Interface()
		}
		return entries
	default:
		return nil
	}
}

// Equal is deep equality with numeric comparison by value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.obj.keys) != len(b.obj.keys) {
			return false
		}
		for _, key := range a.obj.keys {
			other, ok := b.obj.entries[key]
			if !ok || !Equal(a.obj.entries[key], other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values of the same comparable kind. Numbers order
// numerically, strings lexicographically.
func Compare(a, b Value) (int, error) {
	if an, ok := a.AsNumber(); ok {
		bn, ok := b.AsNumber()
		if !ok {
			return 0, fmt.Errorf("cannot compare number with %s", b.TypeName())
		}
		switch {
		case an < bn:
			return -1, nil
		case an > bn:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if as, ok := a.AsString(); ok {
		bs, ok := b.AsString()
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %s", b.TypeName())
		}
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("values of type %s are not ordered", a.TypeName())
}

// String renders a compact JSON representation.
func (v Value) String() string {
	payload, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid value: %v>", err)
	}
	return string(payload)
}

// MarshalJSON renders maps in key order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindNumber:
		return marshalNumber(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindSequence:
		out := []byte{'['}
		for i, item := range v.seq {
			if i > 0 {
				out = append(out, ',')
			}
			encoded, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, encoded...)
		}
		return append(out, ']'), nil
	case KindMap:
		out := []byte{'{'}
		for i, key := range v.obj.keys {
			if i > 0 {
				out = append(out, ',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			out = append(out, encodedKey...)
			out = append(out, ':')
			encoded, err := v.obj.entries[key].MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, encoded...)
		}
		return append(out, '}'), nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

func marshalNumber(n float64) ([]byte, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("number %v is not representable in JSON", n)
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.AppendInt(nil, int64(n), 10), nil
	}
	return strconv.AppendFloat(nil, n, 'g', -1, 64), nil
}
