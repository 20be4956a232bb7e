/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package match

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one of the closed set of Value variants.
type Kind int

const (
	LeafKind Kind = iota
	TupleKind
	RecordKind
	VariantKind
)

func (k Kind) String() string {
	switch k {
	case LeafKind:
		return "leaf"
	case TupleKind:
		return "tuple"
	case RecordKind:
		return "record"
	case VariantKind:
		return "variant"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the immutable data that patterns are matched against.
//
// The only implementations are *Leaf, *Tuple, *Record, and
// *Variant.  None of them offer any way to change their shape (or
// their contents) after construction, so a Value can be shared freely
// between goroutines and between bindings.
type Value interface {
	Kind() Kind
	String() string

	// Interface returns a plain Go rendering of the Value (the
	// same data that MarshalJSON writes).
	Interface() interface{}

	MarshalJSON() ([]byte, error)

	value()
}

// Leaf is an atomic value: an int64, a float64, a string, or a bool.
type Leaf struct {
	x interface{}
}

// Int makes an integer Leaf.
func Int(n int64) *Leaf { return &Leaf{n} }

// Float makes a floating-point Leaf.
//
// Equality follows IEEE 754, so a NaN Leaf never equals anything
// (including itself).
func Float(f float64) *Leaf { return &Leaf{f} }

// Str makes a string Leaf.
func Str(s string) *Leaf { return &Leaf{s} }

// Bool makes a boolean Leaf.
func Bool(b bool) *Leaf { return &Leaf{b} }

// NewLeaf makes a Leaf from a Go scalar.
//
// All of Go's integer types become int64s, and float32s become
// float64s.  json.Numbers become an int64 if they parse as one and a
// float64 otherwise.
func NewLeaf(x interface{}) (*Leaf, error) {
	switch vv := x.(type) {
	case *Leaf:
		if missing(vv) {
			return nil, &BadValue{x, "empty leaf"}
		}
		return vv, nil
	case int64:
		return Int(vv), nil
	case int:
		return Int(int64(vv)), nil
	case int32:
		return Int(int64(vv)), nil
	case int16:
		return Int(int64(vv)), nil
	case int8:
		return Int(int64(vv)), nil
	case uint32:
		return Int(int64(vv)), nil
	case uint16:
		return Int(int64(vv)), nil
	case uint8:
		return Int(int64(vv)), nil
	case float64:
		return Float(vv), nil
	case float32:
		return Float(float64(vv)), nil
	case string:
		return Str(vv), nil
	case bool:
		return Bool(vv), nil
	case json.Number:
		if n, err := vv.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := vv.Float64()
		if err != nil {
			return nil, &BadValue{x, "unparsable number"}
		}
		return Float(f), nil
	default:
		return nil, &BadValue{x, fmt.Sprintf("%T is not a scalar", x)}
	}
}

func (l *Leaf) Kind() Kind { return LeafKind }
func (l *Leaf) value()     {}

// Scalar returns the underlying int64, float64, string, or bool.
func (l *Leaf) Scalar() interface{} { return l.x }

func (l *Leaf) Interface() interface{} { return l.x }

func (l *Leaf) MarshalJSON() ([]byte, error) {
	if f, is := l.x.(float64); is {
		return FloatJSON(f)
	}
	return json.Marshal(l.x)
}

func (l *Leaf) String() string {
	switch vv := l.x.(type) {
	case string:
		return strconv.Quote(vv)
	case float64:
		return strconv.FormatFloat(vv, 'g', -1, 64)
	default:
		return fmt.Sprint(vv)
	}
}

// missing reports whether v is nil, a nil pointer, or a Leaf without
// a scalar.
func missing(v Value) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case *Leaf:
		return vv == nil || vv.x == nil
	case *Tuple:
		return vv == nil
	case *Record:
		return vv == nil
	case *Variant:
		return vv == nil
	}
	return false
}

// scalarEqual compares two scalars with Go's native equality.
//
// Scalars of different kinds are never equal: Int(2) does not equal
// Float(2).  Float comparison is IEEE, so NaN != NaN.
func scalarEqual(a, b interface{}) bool {
	switch x := a.(type) {
	case int64:
		y, is := b.(int64)
		return is && x == y
	case float64:
		y, is := b.(float64)
		return is && x == y
	case string:
		y, is := b.(string)
		return is && x == y
	case bool:
		y, is := b.(bool)
		return is && x == y
	}
	return false
}

// Tuple is a fixed-arity, position-significant sequence of Values.
type Tuple struct {
	elems []Value
}

// NewTuple makes a Tuple.  The given slice is copied.
func NewTuple(vs ...Value) (*Tuple, error) {
	elems := make([]Value, len(vs))
	for i, v := range vs {
		if missing(v) {
			return nil, &BadValue{vs, fmt.Sprintf("nil tuple element %d", i)}
		}
		elems[i] = v
	}
	return &Tuple{elems}, nil
}

// MustTuple is NewTuple that panics on error.
func MustTuple(vs ...Value) *Tuple {
	t, err := NewTuple(vs...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tuple) Kind() Kind { return TupleKind }
func (t *Tuple) value()     {}

// Len returns the arity.
func (t *Tuple) Len() int { return len(t.elems) }

// At returns the i-th element.
func (t *Tuple) At(i int) Value { return t.elems[i] }

func (t *Tuple) Interface() interface{} {
	acc := make([]interface{}, len(t.elems))
	for i, v := range t.elems {
		acc[i] = v.Interface()
	}
	return acc
}

func (t *Tuple) MarshalJSON() ([]byte, error) { return EncodeJSON(t.Interface()) }

func (t *Tuple) String() string {
	ss := make([]string, len(t.elems))
	for i, v := range t.elems {
		ss[i] = v.String()
	}
	return "(" + strings.Join(ss, ", ") + ")"
}

// Field is a named Value in a Record.
type Field struct {
	Name  string
	Value Value
}

// F makes a Field.
func F(name string, v Value) Field {
	return Field{name, v}
}

// Record is a set of named fields.  Names are unique.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord makes a Record.  A repeated field name is an error
// (*DuplicateField).
func NewRecord(fs ...Field) (*Record, error) {
	r := &Record{
		fields: make([]Field, len(fs)),
		index:  make(map[string]int, len(fs)),
	}
	for i, f := range fs {
		if missing(f.Value) {
			return nil, &BadValue{f.Name, "nil field value"}
		}
		if _, have := r.index[f.Name]; have {
			return nil, &DuplicateField{f.Name}
		}
		r.index[f.Name] = i
		r.fields[i] = f
	}
	return r, nil
}

// MustRecord is NewRecord that panics on error.
func MustRecord(fs ...Field) *Record {
	r, err := NewRecord(fs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Record) Kind() Kind { return RecordKind }
func (r *Record) value()     {}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Get returns the value of the named field.
func (r *Record) Get(name string) (Value, bool) {
	i, have := r.index[name]
	if !have {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Names returns the field names in construction order.
func (r *Record) Names() []string {
	acc := make([]string, len(r.fields))
	for i, f := range r.fields {
		acc[i] = f.Name
	}
	return acc
}

func (r *Record) Interface() interface{} {
	acc := make(map[string]interface{}, len(r.fields))
	for _, f := range r.fields {
		acc[f.Name] = f.Value.Interface()
	}
	return acc
}

func (r *Record) MarshalJSON() ([]byte, error) { return EncodeJSON(r.Interface()) }

func (r *Record) String() string {
	ss := make([]string, len(r.fields))
	for i, f := range r.fields {
		ss[i] = f.Name + ": " + f.Value.String()
	}
	return "{" + strings.Join(ss, ", ") + "}"
}

// Variant is a member of a tagged union.  Unit cases have no payload.
type Variant struct {
	tag     string
	payload Value
}

// NewVariant makes a Variant.  The payload can be nil.
func NewVariant(tag string, payload Value) (*Variant, error) {
	if tag == "" {
		return nil, &BadValue{payload, "empty variant tag"}
	}
	if payload != nil && missing(payload) {
		return nil, &BadValue{tag, "nil payload"}
	}
	return &Variant{tag, payload}, nil
}

// MustVariant is NewVariant that panics on error.
func MustVariant(tag string, payload Value) *Variant {
	v, err := NewVariant(tag, payload)
	if err != nil {
		panic(err)
	}
	return v
}

// Unit makes a Variant without a payload.
func Unit(tag string) *Variant {
	return MustVariant(tag, nil)
}

func (v *Variant) Kind() Kind { return VariantKind }
func (v *Variant) value()     {}

// Tag returns the discriminant.
func (v *Variant) Tag() string { return v.tag }

// Payload returns the payload, if any.
func (v *Variant) Payload() (Value, bool) {
	return v.payload, v.payload != nil
}

func (v *Variant) Interface() interface{} {
	m := map[string]interface{}{
		TagKey: v.tag,
	}
	if v.payload != nil {
		m[PayloadKey] = v.payload.Interface()
	}
	return m
}

func (v *Variant) MarshalJSON() ([]byte, error) { return EncodeJSON(v.Interface()) }

func (v *Variant) String() string {
	if v.payload == nil {
		return v.tag
	}
	if t, is := v.payload.(*Tuple); is {
		return v.tag + t.String()
	}
	return v.tag + "(" + v.payload.String() + ")"
}

// Equal reports structural equality.
//
// Records are equal when they have the same field set with equal
// values regardless of field order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Leaf:
		y, is := b.(*Leaf)
		return is && scalarEqual(x.x, y.x)
	case *Tuple:
		y, is := b.(*Tuple)
		if !is || len(x.elems) != len(y.elems) {
			return false
		}
		for i := range x.elems {
			if !Equal(x.elems[i], y.elems[i]) {
				return false
			}
		}
		return true
	case *Record:
		y, is := b.(*Record)
		if !is || len(x.fields) != len(y.fields) {
			return false
		}
		for _, f := range x.fields {
			w, have := y.Get(f.Name)
			if !have || !Equal(f.Value, w) {
				return false
			}
		}
		return true
	case *Variant:
		y, is := b.(*Variant)
		return is && x.tag == y.tag && Equal(x.payload, y.payload)
	}
	return false
}
