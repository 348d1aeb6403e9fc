package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies which variant of the JSON value union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON kind name, as reported in type change records.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON value. Only the field matching Kind is meaningful.
// Object members keep the order they had in the source document.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Items   []Value
	Members []Member
}

// Member is a single key/value entry of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number returns a JSON number holding its literal text.
func Number(n string) Value { return Value{Kind: KindNumber, Number: json.Number(n)} }

// String returns a JSON string.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Array returns a JSON array of the given items.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Items: items}
}

// Object returns a JSON object with members in the given order.
func Object(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{Kind: KindObject, Members: members}
}

// M is shorthand for building object members.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// IsComposite reports whether v is an array or an object.
func (v Value) IsComposite() bool {
	return v.Kind == KindArray || v.Kind == KindObject
}

// Get looks up an object member by key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the object's keys in member order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Len returns the number of items or members of a composite value.
func (v Value) Len() int {
	switch v.Kind {
	case KindArray:
		return len(v.Items)
	case KindObject:
		return len(v.Members)
	default:
		return 0
	}
}

// Equal reports deep structural equality. Numbers compare numerically when
// both sides parse as float64 and by literal text otherwise.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return NumbersEqual(a.Number, b.Number)
	case KindString:
		return a.Str == b.Str
	case KindArray:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for _, m := range a.Members {
			other, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// NumbersEqual compares two number literals.
func NumbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(string(a), 64)
	fb, errB := strconv.ParseFloat(string(b), 64)
	if errA != nil || errB != nil {
		return false
	}
	return fa == fb
}

// MarshalJSON encodes the value as compact JSON, keeping member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		if v.Number == "" {
			buf.WriteString("0")
			return nil
		}
		buf.WriteString(string(v.Number))
	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// String renders the value as compact JSON.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// Document holds a parsed JSON document.
type Document struct {
	Root Value
}

// DiffKind classifies a DiffRecord.
type DiffKind string

const (
	DiffAdded       DiffKind = "added"
	DiffRemoved     DiffKind = "removed"
	DiffChanged     DiffKind = "changed"
	DiffTypeChanged DiffKind = "type_changed"
	DiffError       DiffKind = "error"
)

// DiffRecord is one observed difference between two JSON values.
// Path is empty at the document root.
type DiffRecord struct {
	Kind     DiffKind `json:"kind"`
	Path     string   `json:"path"`
	OldValue *Value   `json:"oldValue,omitempty"`
	NewValue *Value   `json:"newValue,omitempty"`
	OldType  string   `json:"oldType,omitempty"`
	NewType  string   `json:"newType,omitempty"`
	Message  string   `json:"message,omitempty"`
}
